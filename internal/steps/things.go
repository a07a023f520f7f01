package steps

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/driverbdd/internal/behaviour"
	"github.com/roach88/driverbdd/internal/concept"
)

// AnswerVariable is the variable instances are bound to in captured answers.
const AnswerVariable = "x"

// PutThingType defines a type in the current transaction.
func PutThingType(ctx context.Context, c *behaviour.Context, rootLabel, label string) error {
	kind, err := parseKind(rootLabel)
	if err != nil {
		return err
	}
	tx := c.CurrentTransaction()
	if tx == nil {
		return behaviour.ErrNoTransaction
	}
	_, err = tx.Concepts().PutThingType(ctx, kind, label)
	return err
}

// ThingTypeExists checks whether the current transaction sees the type.
func ThingTypeExists(ctx context.Context, c *behaviour.Context, rootLabel, label, expected string) error {
	kind, err := parseKind(rootLabel)
	if err != nil {
		return err
	}
	want, err := parseBool(expected)
	if err != nil {
		return err
	}

	_, err = c.GetThingType(ctx, kind, label)
	got := err == nil
	if err != nil && !errors.Is(err, behaviour.ErrTypeNotFound) {
		return err
	}
	if got != want {
		return fmt.Errorf("%w: %s(%s) exists: %t, expected %t", ErrExpectation, kind, label, got, want)
	}
	return nil
}

// CreateInstance creates an instance of the type and binds it to the variable.
func CreateInstance(ctx context.Context, c *behaviour.Context, rootLabel, label, variable string) error {
	kind, err := parseKind(rootLabel)
	if err != nil {
		return err
	}
	typ, err := c.GetThingType(ctx, kind, label)
	if err != nil {
		return err
	}
	thing, err := c.CurrentTransaction().Concepts().CreateThing(ctx, typ)
	if err != nil {
		return err
	}
	c.Put(variable, thing)
	return nil
}

// ThingExists checks whether the variable is bound.
func ThingExists(c *behaviour.Context, variable, expected string) error {
	want, err := parseBool(expected)
	if err != nil {
		return err
	}
	_, err = c.Get(variable)
	got := err == nil
	if got != want {
		return fmt.Errorf("%w: $%s exists: %t, expected %t", ErrExpectation, variable, got, want)
	}
	return nil
}

// ThingHasType checks the type label of the thing bound to the variable.
func ThingHasType(c *behaviour.Context, variable, label string) error {
	thing, err := c.Get(variable)
	if err != nil {
		return err
	}
	if got := thing.Type().Label(); got != label {
		return fmt.Errorf("%w: $%s has type %s, expected %s", ErrExpectation, variable, got, label)
	}
	return nil
}

// GetInstances replaces the captured answers with one row per instance of the type.
func GetInstances(ctx context.Context, c *behaviour.Context, rootLabel, label string) error {
	c.ClearAnswers()
	kind, err := parseKind(rootLabel)
	if err != nil {
		return err
	}
	typ, err := c.GetThingType(ctx, kind, label)
	if err != nil {
		return err
	}
	things, err := c.CurrentTransaction().Concepts().Instances(ctx, typ)
	if err != nil {
		return err
	}

	answers := make([]concept.ConceptRow, 0, len(things))
	for _, thing := range things {
		answers = append(answers, concept.ConceptRow{AnswerVariable: thing})
	}
	c.Answers = answers
	return nil
}

// GetInstanceCount replaces the captured value answer with the number of
// instances of the type.
func GetInstanceCount(ctx context.Context, c *behaviour.Context, rootLabel, label string) error {
	c.ClearAnswers()
	kind, err := parseKind(rootLabel)
	if err != nil {
		return err
	}
	typ, err := c.GetThingType(ctx, kind, label)
	if err != nil {
		return err
	}
	n, err := c.CurrentTransaction().Concepts().InstanceCount(ctx, typ)
	if err != nil {
		return err
	}
	v := concept.NewLong(n)
	c.ValueAnswer = &v
	return nil
}

// AnswerSizeIs checks the number of captured answer rows.
func AnswerSizeIs(c *behaviour.Context, expected string) error {
	want, err := parseCount(expected)
	if err != nil {
		return err
	}
	if c.Answers == nil {
		return fmt.Errorf("%w: no answers captured", ErrExpectation)
	}
	if got := int64(len(c.Answers)); got != want {
		return fmt.Errorf("%w: answer size is %d, expected %d", ErrExpectation, got, want)
	}
	return nil
}

// ValueAnswerIs compares the captured value answer with its text form.
func ValueAnswerIs(c *behaviour.Context, expected string) error {
	if c.ValueAnswer == nil {
		return fmt.Errorf("%w: no value answer captured", ErrExpectation)
	}
	if got := c.ValueAnswer.String(); got != expected {
		return fmt.Errorf("%w: value answer is %s, expected %s", ErrExpectation, got, expected)
	}
	return nil
}

// AnswersAreAbsent checks that no query result is captured.
func AnswersAreAbsent(c *behaviour.Context) error {
	if c.Answers != nil || c.ValueAnswer != nil {
		return fmt.Errorf("%w: answers are still captured", ErrExpectation)
	}
	return nil
}

// ClearAnswers forgets the captured query results.
func ClearAnswers(c *behaviour.Context) error {
	c.ClearAnswers()
	return nil
}
