package envdef

import "fmt"

// Definition is an immutable, content-addressed environment definition.
// ShortID and LongID are derived from Payload; two definitions with the
// same LongID are the same definition.
type Definition struct {
	ShortID string
	LongID  string
	Payload Payload
}

// New builds a Definition from a payload, deriving both ids.
func New(p Payload) (Definition, error) {
	shortID, longID, err := ContentIDs(p)
	if err != nil {
		return Definition{}, err
	}
	return Definition{ShortID: shortID, LongID: longID, Payload: p}, nil
}

// Verify recomputes the ids from the payload and checks them against
// the ids carried by the definition. A mismatch means the record was
// corrupted in storage or produced by a buggy write path.
func (d Definition) Verify() error {
	shortID, longID, err := ContentIDs(d.Payload)
	if err != nil {
		return fmt.Errorf("verify definition %s: %w", d.ShortID, err)
	}
	if shortID != d.ShortID || longID != d.LongID {
		return fmt.Errorf("definition ids do not match content: stored %s/%s, computed %s/%s",
			d.ShortID, d.LongID, shortID, longID)
	}
	return nil
}

// Binding is one entry in the append-only application-environment
// history. Seq is assigned by the store and is the sole ordering
// authority; the binding with the highest Seq for an (App, Env) pair is
// the current one.
type Binding struct {
	Seq        int64
	App        string
	Env        string
	Definition Definition
}

// BindingKey identifies an (application, environment name) pair.
type BindingKey struct {
	App string
	Env string
}
