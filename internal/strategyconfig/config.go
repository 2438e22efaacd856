// Package strategyconfig loads and validates the selector configuration
// file that drives a screening run.
package strategyconfig

// Selector is one configuration entry: which strategy to run, under what
// alias, with what parameters. Unrecognized keys in Params are tolerated
// and passed through to the strategy constructor, which ignores them.
type Selector struct {
	Strategy string         `json:"class" yaml:"class"`
	Alias    string         `json:"alias,omitempty" yaml:"alias,omitempty"`
	Params   map[string]any `json:"params,omitempty" yaml:"params,omitempty"`
	Activate *bool          `json:"activate,omitempty" yaml:"activate,omitempty"`
}

// Active reports whether the entry should run. Absent means active.
func (s Selector) Active() bool {
	return s.Activate == nil || *s.Activate
}

// Label returns the alias, falling back to the strategy name.
func (s Selector) Label() string {
	if s.Alias != "" {
		return s.Alias
	}
	return s.Strategy
}
