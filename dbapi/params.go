package dbapi

import "fmt"

// Params captures the positional and keyword arguments of a connect or
// cursor call. A Params value attached to a proxy is never mutated; it
// is only read for attribute derivation and may be shared between a
// connection and every cursor it produces.
type Params struct {
	Args   []any
	Kwargs map[string]any
}

// Empty reports whether the value carries no arguments at all.
// A nil *Params is empty.
func (p *Params) Empty() bool {
	return p == nil || (len(p.Args) == 0 && len(p.Kwargs) == 0)
}

// String renders the arguments for span attributes. Map keys are printed
// in sorted order by fmt, so the output is deterministic.
func (p *Params) String() string {
	if p == nil {
		return ""
	}
	return fmt.Sprintf("(%v, %v)", p.Args, p.Kwargs)
}

// redacted returns a copy with the given keyword keys removed, or the
// receiver itself when nothing needs removing. The original is left
// untouched so the raw connect call still receives full credentials.
func (p *Params) redacted(keys map[string]struct{}) *Params {
	if p == nil || len(p.Kwargs) == 0 {
		return p
	}

	found := false
	for k := range keys {
		if _, ok := p.Kwargs[k]; ok {
			found = true
			break
		}
	}
	if !found {
		return p
	}

	safe := make(map[string]any, len(p.Kwargs))
	for k, v := range p.Kwargs {
		if _, drop := keys[k]; drop {
			continue
		}
		safe[k] = v
	}
	return &Params{Args: p.Args, Kwargs: safe}
}

// formatValues renders a parameter slice for the sql.params attribute.
func formatValues(params []any) string {
	return fmt.Sprintf("%v", params)
}

// formatValueSeq renders an executemany parameter sequence.
func formatValueSeq(seq [][]any) string {
	return fmt.Sprintf("%v", seq)
}
