// Package categories is the single place that translates between stable
// category ids and display names.
package categories

import (
	"errors"
	"fmt"
	"strings"
)

// Category is one entry of the directory as the backend stores it.
type Category struct {
	ID          string `json:"id" toml:"id"`
	Name        string `json:"name" toml:"name"`
	Description string `json:"description" toml:"description"`
}

var (
	ErrEmptyID   = errors.New("empty category id")
	ErrEmptyName = errors.New("empty category name")
)

func (c Category) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return ErrEmptyID
	}
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

// Directory is an immutable id<->name index. Name lookups ignore case.
type Directory struct {
	list   []Category
	byID   map[string]int
	byName map[string]int
}

// NewDirectory indexes list. Invalid entries and duplicates (by id or by
// name) are rejected together in one error.
func NewDirectory(list []Category) (*Directory, error) {
	d := &Directory{
		list:   make([]Category, 0, len(list)),
		byID:   make(map[string]int, len(list)),
		byName: make(map[string]int, len(list)),
	}
	var problems []string
	for _, c := range list {
		c.ID, c.Name = strings.TrimSpace(c.ID), strings.TrimSpace(c.Name)
		if err := c.Validate(); err != nil {
			problems = append(problems, fmt.Sprintf("%+v: %v", c, err))
			continue
		}
		if _, dup := d.byID[c.ID]; dup {
			problems = append(problems, fmt.Sprintf("duplicate id %q", c.ID))
			continue
		}
		key := strings.ToUpper(c.Name)
		if _, dup := d.byName[key]; dup {
			problems = append(problems, fmt.Sprintf("duplicate name %q", c.Name))
			continue
		}
		d.byID[c.ID] = len(d.list)
		d.byName[key] = len(d.list)
		d.list = append(d.list, c)
	}
	if len(problems) > 0 {
		return nil, fmt.Errorf("invalid category directory:\n- %s", strings.Join(problems, "\n- "))
	}
	return d, nil
}

// MustDirectory is NewDirectory for static lists.
func MustDirectory(list []Category) *Directory {
	d, err := NewDirectory(list)
	if err != nil {
		panic(err)
	}
	return d
}

// IDFor returns the id of the category named name.
func (d *Directory) IDFor(name string) (string, bool) {
	i, ok := d.byName[strings.ToUpper(strings.TrimSpace(name))]
	if !ok {
		return "", false
	}
	return d.list[i].ID, true
}

// NameFor returns the display name of id.
func (d *Directory) NameFor(id string) (string, bool) {
	i, ok := d.byID[strings.TrimSpace(id)]
	if !ok {
		return "", false
	}
	return d.list[i].Name, true
}

// Lookup returns the full entry for a name.
func (d *Directory) Lookup(name string) (Category, bool) {
	i, ok := d.byName[strings.ToUpper(strings.TrimSpace(name))]
	if !ok {
		return Category{}, false
	}
	return d.list[i], true
}

// All returns the categories in directory order.
func (d *Directory) All() []Category {
	return append([]Category(nil), d.list...)
}

func (d *Directory) Len() int { return len(d.list) }
