package syspkg

import (
	"context"
	"errors"
	"sort"

	"github.com/quantmind-br/libmgr/internal/core"
)

// MockProvider is an in-memory Provider for testing.
// It keeps Requires and RequiredBy inverse to each other and records every
// call it receives.
type MockProvider struct {
	Libraries map[string]*core.LibraryRecord

	ListErr      error
	ShowErr      map[string]error
	InstallErr   error
	UninstallErr map[string]error

	ListCalls      int
	ShowCalls      map[string]int
	InstallCalls   [][]string
	UninstallCalls []string
}

// NewMockProvider creates an empty MockProvider
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Libraries:    make(map[string]*core.LibraryRecord),
		ShowErr:      make(map[string]error),
		UninstallErr: make(map[string]error),
		ShowCalls:    make(map[string]int),
	}
}

// AddLibrary registers an installed library and its direct requirements.
// Requirements that are not registered yet are added as installed leaves.
func (m *MockProvider) AddLibrary(name, version string, requires ...string) *MockProvider {
	rec := m.ensure(name)
	rec.Version = version
	for _, dep := range requires {
		rec.Requires.Add(dep)
		m.ensure(dep).RequiredBy.Add(name)
	}
	return m
}

func (m *MockProvider) ensure(name string) *core.LibraryRecord {
	if rec, ok := m.Libraries[name]; ok {
		return rec
	}
	rec := core.EmptyRecord(name)
	m.Libraries[name] = &rec
	return &rec
}

// Name implements Provider.Name
func (m *MockProvider) Name() string {
	return "mock"
}

// ListInstalled implements Provider.ListInstalled
func (m *MockProvider) ListInstalled(_ context.Context) ([]string, error) {
	m.ListCalls++
	if m.ListErr != nil {
		return nil, m.ListErr
	}

	names := make([]string, 0, len(m.Libraries))
	for name := range m.Libraries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Show implements Provider.Show
func (m *MockProvider) Show(_ context.Context, name string) (*core.LibraryRecord, error) {
	m.ShowCalls[name]++
	if err := m.ShowErr[name]; err != nil {
		return nil, err
	}

	rec, ok := m.Libraries[name]
	if !ok {
		return nil, &core.CommandError{Op: "show", Library: name, Err: errors.New("package not found")}
	}
	c := rec.Clone()
	return &c, nil
}

// Install implements Provider.Install
func (m *MockProvider) Install(_ context.Context, names []string) error {
	if len(names) == 0 {
		return core.ErrNothingToInstall
	}
	m.InstallCalls = append(m.InstallCalls, append([]string(nil), names...))
	if m.InstallErr != nil {
		return m.InstallErr
	}

	for _, name := range names {
		m.ensure(name)
	}
	return nil
}

// Uninstall implements Provider.Uninstall
func (m *MockProvider) Uninstall(_ context.Context, name string) error {
	m.UninstallCalls = append(m.UninstallCalls, name)
	if err := m.UninstallErr[name]; err != nil {
		return err
	}

	rec, ok := m.Libraries[name]
	if !ok {
		return nil
	}
	for dep := range rec.Requires {
		if d, ok := m.Libraries[dep]; ok {
			d.RequiredBy.Del(name)
		}
	}
	delete(m.Libraries, name)
	return nil
}

var _ Provider = (*MockProvider)(nil)
