package intake

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// MaxBodyParts caps the number of body-map entries per record.
const MaxBodyParts = 20

var (
	ErrBodyPartLimit   = errors.New("登録できるのは20部位までです")
	ErrInvalidBodyPart = errors.New("invalid body part entry")
)

// BodyParts is the ordered body-map entry list. Order is insertion order and is
// the order used for display, summaries and the report.
type BodyParts []BodyPartRecord

// Full reports whether another entry would exceed MaxBodyParts.
func (b BodyParts) Full() bool {
	return len(b) >= MaxBodyParts
}

// Add appends e under a freshly generated id and returns the stored entry. A
// full list or an invalid entry leaves the list untouched.
func (b *BodyParts) Add(e BodyPartRecord) (BodyPartRecord, error) {
	if b.Full() {
		return BodyPartRecord{}, ErrBodyPartLimit
	}
	e.PartName = strings.TrimSpace(e.PartName)
	if err := validateBodyPart(e); err != nil {
		return BodyPartRecord{}, err
	}

	e.ID = b.newID()
	*b = append(*b, e)
	return e, nil
}

// Remove deletes the entry with the given id. Unknown ids are ignored.
func (b *BodyParts) Remove(id string) bool {
	for i, e := range *b {
		if e.ID == id {
			*b = append((*b)[:i:i], (*b)[i+1:]...)
			return true
		}
	}
	return false
}

func (b BodyParts) find(id string) bool {
	for _, e := range b {
		if e.ID == id {
			return true
		}
	}
	return false
}

func (b BodyParts) newID() string {
	for {
		id := uuid.NewString()
		if !b.find(id) {
			return id
		}
	}
}

func validateBodyPart(e BodyPartRecord) error {
	switch {
	case e.PartName == "":
		return fmt.Errorf("%w: part name is required", ErrInvalidBodyPart)
	case !isSide(e.Side):
		return fmt.Errorf("%w: unknown side %q", ErrInvalidBodyPart, e.Side)
	case !isSymptom(e.Symptom):
		return fmt.Errorf("%w: unknown symptom %q", ErrInvalidBodyPart, e.Symptom)
	case e.Level < 0 || e.Level > 10:
		return fmt.Errorf("%w: level %d is outside 0-10", ErrInvalidBodyPart, e.Level)
	}
	return nil
}
