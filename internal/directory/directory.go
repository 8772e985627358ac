// Package directory owns the customer list and each customer's projects.
package directory

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/Tiliavir/timesheet-ledger/internal/kvstore"
	"github.com/Tiliavir/timesheet-ledger/internal/model"
)

var (
	// ErrValidation is the parent of every rejected directory mutation.
	ErrValidation = errors.New("validation error")

	ErrDuplicateName    = fmt.Errorf("%w: customer already exists", ErrValidation)
	ErrUnknownCustomer  = fmt.Errorf("%w: unknown customer", ErrValidation)
	ErrDuplicateProject = fmt.Errorf("%w: project already exists", ErrValidation)
	ErrEmptyName        = fmt.Errorf("%w: name must not be empty", ErrValidation)
)

// Directory is the ordered set of customers. Every mutation writes the full
// snapshot back to the store before returning.
type Directory struct {
	store     kvstore.Store
	l         *slog.Logger
	customers []model.Customer
}

// Load reads the directory snapshot from s. A missing or malformed snapshot
// yields an empty directory.
func Load(s kvstore.Store, l *slog.Logger) *Directory {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	d := &Directory{store: s, l: l}
	var customers []model.Customer
	if kvstore.LoadJSON(s, kvstore.KeyCustomer, &customers, l) {
		d.customers = customers
	}
	for i := range d.customers {
		if d.customers[i].Projects == nil {
			d.customers[i].Projects = []string{}
		}
	}
	return d
}

func (d *Directory) index(name string) int {
	return slices.IndexFunc(d.customers, func(c model.Customer) bool {
		return strings.EqualFold(c.Name, name)
	})
}

func (d *Directory) persist() error {
	if err := kvstore.SaveJSON(d.store, kvstore.KeyCustomer, d.customers); err != nil {
		d.l.Warn("directory not persisted", slog.String("error", err.Error()))
		return err
	}
	return nil
}

// AddCustomer appends a customer with no projects. Names are unique ignoring
// case.
func (d *Directory) AddCustomer(name, companyName, email string) (model.Customer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Customer{}, ErrEmptyName
	}
	if d.index(name) >= 0 {
		return model.Customer{}, fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}
	c := model.Customer{
		Name:        name,
		Email:       strings.TrimSpace(email),
		CompanyName: strings.TrimSpace(companyName),
		Projects:    []string{},
	}
	d.customers = append(d.customers, c)
	return c, d.persist()
}

// RemoveCustomer drops a customer. Entries referring to it are untouched.
// Removing an unknown customer is a no-op.
func (d *Directory) RemoveCustomer(name string) (bool, error) {
	i := d.index(name)
	if i < 0 {
		return false, nil
	}
	d.customers = slices.Delete(d.customers, i, i+1)
	return true, d.persist()
}

// AddProject appends project to the customer's list. Project names are unique
// per customer ignoring case.
func (d *Directory) AddProject(customerName, projectName string) error {
	projectName = strings.TrimSpace(projectName)
	if projectName == "" {
		return ErrEmptyName
	}
	i := d.index(customerName)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrUnknownCustomer, customerName)
	}
	if d.customers[i].HasProject(projectName) {
		return fmt.Errorf("%w: %q for %q", ErrDuplicateProject, projectName, d.customers[i].Name)
	}
	d.customers[i].Projects = append(d.customers[i].Projects, projectName)
	return d.persist()
}

// RemoveProject removes a project if present. Unknown customers or projects
// are not an error.
func (d *Directory) RemoveProject(customerName, projectName string) error {
	i := d.index(customerName)
	if i < 0 {
		return nil
	}
	c := &d.customers[i]
	n := len(c.Projects)
	c.Projects = slices.DeleteFunc(c.Projects, func(p string) bool {
		return strings.EqualFold(p, projectName)
	})
	if len(c.Projects) == n {
		return nil
	}
	return d.persist()
}

// SetCustomerEmail updates the email of a known customer. Unknown customers
// are ignored.
func (d *Directory) SetCustomerEmail(customerName, email string) error {
	i := d.index(customerName)
	if i < 0 {
		return nil
	}
	d.customers[i].Email = strings.TrimSpace(email)
	return d.persist()
}

// Customers returns a copy of the customers in insertion order.
func (d *Directory) Customers() []model.Customer {
	out := make([]model.Customer, len(d.customers))
	for i, c := range d.customers {
		c.Projects = slices.Clone(c.Projects)
		out[i] = c
	}
	return out
}

// Find looks a customer up by name, ignoring case.
func (d *Directory) Find(name string) (model.Customer, bool) {
	i := d.index(name)
	if i < 0 {
		return model.Customer{}, false
	}
	c := d.customers[i]
	c.Projects = slices.Clone(c.Projects)
	return c, true
}
