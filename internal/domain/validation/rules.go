package validation

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"medsync/internal/domain/errs"
)

// FieldType объявленный тип поля
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeNumber  FieldType = "number"
	TypeBoolean FieldType = "boolean"
	TypeObject  FieldType = "object"
	TypeArray   FieldType = "array"
)

// RuleSet правила проверки документов одной коллекции
type RuleSet struct {
	Required []string             `yaml:"required"`
	Types    map[string]FieldType `yaml:"types"`
}

// Registry неизменяемый набор правил по коллекциям
type Registry struct {
	rules map[string]RuleSet
}

type rulesFile struct {
	Collections map[string]RuleSet `yaml:"collections"`
}

// NewRegistry создает реестр из готовых правил
func NewRegistry(rules map[string]RuleSet) *Registry {
	copied := make(map[string]RuleSet, len(rules))
	for name, rs := range rules {
		copied[name] = rs
	}
	return &Registry{rules: copied}
}

// ParseRegistry разбирает YAML с правилами
func ParseRegistry(data []byte) (*Registry, error) {
	var f rulesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse validation rules: %w", err)
	}
	return NewRegistry(f.Collections), nil
}

// LoadRegistry читает правила из файла. Пустой путь - пустой реестр.
func LoadRegistry(path string) (*Registry, error) {
	if path == "" {
		return NewRegistry(nil), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read validation rules: %w", err)
	}
	return ParseRegistry(data)
}

// Lookup возвращает правила коллекции или ErrUnknownCollection
func (r *Registry) Lookup(collection string) (RuleSet, error) {
	rs, ok := r.rules[collection]
	if !ok {
		return RuleSet{}, fmt.Errorf("%w: no validation rules for %q", errs.ErrUnknownCollection, collection)
	}
	return rs, nil
}

func (r *Registry) Len() int {
	return len(r.rules)
}
