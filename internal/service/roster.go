package service

import (
	"strings"

	"github.com/schaferjart/telegram-finance/internal/models"
)

type ToggleAction string

const (
	ToggleAdded   ToggleAction = "added"
	ToggleRemoved ToggleAction = "removed"
)

// roster is a canonical-identity index over a name list: lowercase form to
// the single stored casing. Names are appended exactly as submitted, so no
// two entries may collide case-insensitively.
type roster struct {
	names []string
	index map[string]string
}

func newRoster(names []string) *roster {
	r := &roster{names: names, index: make(map[string]string, len(names))}
	for _, name := range names {
		key := strings.ToLower(name)
		if _, exists := r.index[key]; !exists {
			r.index[key] = name
		}
	}
	return r
}

// resolve returns the stored casing for a free-text name, matching
// case-insensitively.
func (r *roster) resolve(name string) (string, bool) {
	canonical, ok := r.index[strings.ToLower(name)]
	return canonical, ok
}

func (r *roster) add(name string) {
	r.names = append(r.names, name)
	r.index[strings.ToLower(name)] = name
}

func (r *roster) remove(canonical string) {
	for i, name := range r.names {
		if name == canonical {
			r.names = append(r.names[:i], r.names[i+1:]...)
			break
		}
	}
	delete(r.index, strings.ToLower(canonical))
}

func (s *Service) memberRoster(doc *models.Document) *roster {
	if s.members == nil {
		s.members = newRoster(doc.Members)
	}
	return s.members
}

func (s *Service) accountRoster(doc *models.Document) *roster {
	if s.accounts == nil {
		s.accounts = newRoster(doc.Accounts)
	}
	return s.accounts
}

// ToggleMember adds the name to the household roster, or removes it if it
// already matches an entry case-insensitively. Removing a member also deletes
// the chore, penalty and violator buckets keyed by the stored name.
func (s *Service) ToggleMember(name string) (ToggleAction, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name = strings.TrimSpace(name)
	doc, err := s.store.Load()
	if err != nil {
		return "", "", err
	}
	r := s.memberRoster(doc)

	if canonical, ok := r.resolve(name); ok {
		doc.Members = removeName(doc.Members, canonical)
		delete(doc.Chores, canonical)
		delete(doc.Penalties, canonical)
		delete(doc.LastWeekViolators, strings.ToLower(canonical))
		if err := s.store.Save(doc); err != nil {
			return "", "", err
		}
		r.remove(canonical)
		return ToggleRemoved, canonical, nil
	}

	doc.Members = append(doc.Members, name)
	if err := s.store.Save(doc); err != nil {
		return "", "", err
	}
	r.add(name)
	return ToggleAdded, name, nil
}

// ToggleAccount adds or removes an account, mirroring ToggleMember. Removing
// an account also deletes its balance buckets.
func (s *Service) ToggleAccount(name string) (ToggleAction, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name = strings.TrimSpace(name)
	doc, err := s.store.Load()
	if err != nil {
		return "", "", err
	}
	r := s.accountRoster(doc)

	if canonical, ok := r.resolve(name); ok {
		doc.Accounts = removeName(doc.Accounts, canonical)
		delete(doc.Balances, canonical)
		if err := s.store.Save(doc); err != nil {
			return "", "", err
		}
		r.remove(canonical)
		return ToggleRemoved, canonical, nil
	}

	doc.Accounts = append(doc.Accounts, name)
	doc.Balances[name] = models.NewBalance()
	if err := s.store.Save(doc); err != nil {
		return "", "", err
	}
	r.add(name)
	return ToggleAdded, name, nil
}

func removeName(names []string, target string) []string {
	out := names[:0]
	for _, name := range names {
		if name != target {
			out = append(out, name)
		}
	}
	return out
}
