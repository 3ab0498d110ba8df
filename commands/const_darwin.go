package commands

const (
	_etc = "/usr/local/etc/com.github.uhppoted/gsheets"
	_var = "/usr/local/var/com.github.uhppoted/gsheets"

	DEFAULT_CONFIG  = _etc + "/gsheets.toml"
	DEFAULT_WORKDIR = _var
)
