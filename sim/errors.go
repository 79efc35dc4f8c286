package sim

import "fmt"

// ConfigError reports an invalid simulation configuration. It is fatal to the
// trial that observed it and is surfaced immediately, never retried.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid configuration: %s", e.Reason)
	}
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// PhyAdapterError wraps a failure reported by the PHY adapter. It terminates
// the current trial only; other trials in a batch are unaffected.
type PhyAdapterError struct {
	Op  string // adapter operation: "encode" or "decode"
	Err error
}

func (e *PhyAdapterError) Error() string {
	return fmt.Sprintf("phy adapter %s: %v", e.Op, e.Err)
}

func (e *PhyAdapterError) Unwrap() error {
	return e.Err
}
