package commands

const (
	_etc = "/usr/local/etc/gsheets"
	_var = "/usr/local/var/gsheets"

	DEFAULT_CONFIG  = _etc + "/gsheets.toml"
	DEFAULT_WORKDIR = _var
)
