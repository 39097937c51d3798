package network

import "fmt"

// ConfigError reports a failed network configuration operation. It carries
// the interface involved and, when one exists, the underlying cause.
type ConfigError struct {
	Iface string
	Msg   string
	Err   error
}

func (e *ConfigError) Error() string {
	msg := e.Msg
	if e.Iface != "" {
		msg = fmt.Sprintf("%s: %s", e.Iface, msg)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
