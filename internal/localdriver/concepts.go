package localdriver

import (
	"context"

	"github.com/roach88/driverbdd/internal/concept"
)

type thingType struct {
	label string
	kind  concept.Kind
	root  bool
}

func (t *thingType) Label() string      { return t.label }
func (t *thingType) Kind() concept.Kind { return t.kind }
func (t *thingType) IsRoot() bool       { return t.root }

func (t *thingType) String() string {
	return t.kind.String() + "(" + t.label + ")"
}

type thing struct {
	iid string
	typ *thingType
}

func (t *thing) IID() string             { return t.iid }
func (t *thing) Type() concept.ThingType { return t.typ }
func (t *thing) String() string          { return t.typ.label + "[" + t.iid + "]" }

func rootType(kind concept.Kind) *thingType {
	return &thingType{label: kind.RootLabel(), kind: kind, root: true}
}

type conceptManager struct {
	tx *transaction
}

var _ concept.ConceptManager = (*conceptManager)(nil)

// GetThingType implements concept.ConceptManager.
func (m *conceptManager) GetThingType(ctx context.Context, kind concept.Kind, label string) (concept.ThingType, error) {
	m.tx.mu.Lock()
	defer m.tx.mu.Unlock()

	if err := m.tx.usableLocked(); err != nil {
		return nil, err
	}
	t, err := m.lookupLocked(ctx, normalizeName(label))
	if err != nil {
		return nil, err
	}
	if t == nil || t.kind != kind {
		return nil, nil
	}
	return t, nil
}

// PutThingType implements concept.ConceptManager.
func (m *conceptManager) PutThingType(ctx context.Context, kind concept.Kind, label string) (concept.ThingType, error) {
	m.tx.mu.Lock()
	defer m.tx.mu.Unlock()

	if err := m.tx.usableLocked(); err != nil {
		return nil, err
	}
	switch m.tx.typ {
	case concept.Read:
		return nil, concept.NewDriverError(concept.ErrCodeTransactionReadOnly, "cannot define types in a read transaction")
	case concept.Write:
		return nil, concept.NewDriverError(concept.ErrCodeTransactionNotSchema, "types can only be defined in a schema transaction")
	}
	if !kind.Valid() {
		return nil, concept.NewDriverError(concept.ErrCodeInvalidArgument, "invalid kind %s", kind)
	}

	label = normalizeName(label)
	if err := validateName("type label", label); err != nil {
		return nil, err
	}

	existing, err := m.lookupLocked(ctx, label)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if existing.kind != kind || existing.root {
			return nil, concept.NewDriverError(concept.ErrCodeTypeLabelTaken,
				"label %q is already used by %s", label, existing)
		}
		return existing, nil
	}

	t := &thingType{label: label, kind: kind}
	m.tx.pendingTypes = append(m.tx.pendingTypes, t)
	return t, nil
}

// CreateThing implements concept.ConceptManager.
func (m *conceptManager) CreateThing(ctx context.Context, typ concept.ThingType) (concept.Thing, error) {
	m.tx.mu.Lock()
	defer m.tx.mu.Unlock()

	if err := m.tx.usableLocked(); err != nil {
		return nil, err
	}
	switch m.tx.typ {
	case concept.Read:
		return nil, concept.NewDriverError(concept.ErrCodeTransactionReadOnly, "cannot create instances in a read transaction")
	case concept.Schema:
		return nil, concept.NewDriverError(concept.ErrCodeTransactionSchemaData, "cannot create instances in a schema transaction")
	}
	if typ == nil {
		return nil, concept.NewDriverError(concept.ErrCodeInvalidArgument, "type must not be nil")
	}

	t, err := m.lookupLocked(ctx, typ.Label())
	if err != nil {
		return nil, err
	}
	if t == nil || t.kind != typ.Kind() {
		return nil, concept.NewDriverError(concept.ErrCodeTypeNotFound, "%s(%s) is not defined", typ.Kind(), typ.Label())
	}
	if t.root || t.kind == concept.KindAttribute {
		return nil, concept.NewDriverError(concept.ErrCodeTypeAbstract, "cannot create instances of %s", t)
	}

	th := &thing{iid: m.tx.driver.iids.NewIID(), typ: t}
	m.tx.pendingThings = append(m.tx.pendingThings, th)
	return th, nil
}

// Instances implements concept.ConceptManager. Committed instances come first,
// then the ones created in this transaction, each in creation order.
func (m *conceptManager) Instances(ctx context.Context, typ concept.ThingType) ([]concept.Thing, error) {
	m.tx.mu.Lock()
	defer m.tx.mu.Unlock()

	if err := m.tx.usableLocked(); err != nil {
		return nil, err
	}
	if typ == nil {
		return nil, concept.NewDriverError(concept.ErrCodeInvalidArgument, "type must not be nil")
	}

	t, err := m.lookupLocked(ctx, typ.Label())
	if err != nil {
		return nil, err
	}
	if t == nil || t.kind != typ.Kind() {
		return nil, concept.NewDriverError(concept.ErrCodeTypeNotFound, "%s(%s) is not defined", typ.Kind(), typ.Label())
	}

	committed, err := m.tx.driver.store.listThings(ctx, m.tx.database, t)
	if err != nil {
		return nil, err
	}

	result := make([]concept.Thing, 0, len(committed)+len(m.tx.pendingThings))
	for _, th := range committed {
		result = append(result, th)
	}
	for _, th := range m.tx.pendingThings {
		if matches(t, th.typ) {
			result = append(result, th)
		}
	}
	return result, nil
}

// InstanceCount implements concept.ConceptManager.
func (m *conceptManager) InstanceCount(ctx context.Context, typ concept.ThingType) (int64, error) {
	things, err := m.Instances(ctx, typ)
	if err != nil {
		return 0, err
	}
	return int64(len(things)), nil
}

// lookupLocked finds a type by label in this transaction's view, regardless of kind.
func (m *conceptManager) lookupLocked(ctx context.Context, label string) (*thingType, error) {
	if kind, ok := rootKind(label); ok {
		return rootType(kind), nil
	}
	for _, t := range m.tx.pendingTypes {
		if t.label == label {
			return t, nil
		}
	}
	kind, ok, err := m.tx.driver.store.typeKind(ctx, m.tx.database, label)
	if err != nil || !ok {
		return nil, err
	}
	return &thingType{label: label, kind: kind}, nil
}

func matches(query, actual *thingType) bool {
	if query.root {
		return actual.kind == query.kind
	}
	return actual.label == query.label
}
