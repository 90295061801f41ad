package session

import (
	"fmt"

	"nationportal/models"
)

// MilitaryPatch carries the counters to overwrite; nil fields are left alone.
type MilitaryPatch struct {
	TroopCount      *int64
	TankCount       *int64
	ShipCount       *int64
	AircraftCount   *int64
	NuclearWarheads *int64
	ReadinessLevel  *int
}

// EmblemKind selects which overview image an upload replaces.
type EmblemKind string

const (
	EmblemFlag       EmblemKind = "flag"
	EmblemCoatOfArms EmblemKind = "coatOfArms"
)

// ParseEmblemKind validates a form value.
func ParseEmblemKind(s string) (EmblemKind, error) {
	switch EmblemKind(s) {
	case EmblemFlag, EmblemCoatOfArms:
		return EmblemKind(s), nil
	}
	return "", fmt.Errorf("%w: emblem %q", models.ErrUnknownField, s)
}

// UpdateStats overwrites the named stats fields. Unknown names reject the whole patch.
func (s *Session) UpdateStats(patch map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireAdmin(); err != nil {
		return err
	}
	return s.mutate(func(doc *models.NationDocument) error {
		return applyStats(doc, patch)
	})
}

// UpdateMilitaryNumbers overwrites the supplied counters. Readiness is clamped to 0..100.
func (s *Session) UpdateMilitaryNumbers(patch MilitaryPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireAdmin(); err != nil {
		return err
	}
	return s.mutate(func(doc *models.NationDocument) error {
		applyMilitary(doc, patch)
		return nil
	})
}

// UpdateConsole applies the console form's stats and military counters as one
// save. Either both halves persist or neither does.
func (s *Session) UpdateConsole(stats map[string]string, military MilitaryPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireAdmin(); err != nil {
		return err
	}
	return s.mutate(func(doc *models.NationDocument) error {
		if err := applyStats(doc, stats); err != nil {
			return err
		}
		applyMilitary(doc, military)
		return nil
	})
}

func applyStats(doc *models.NationDocument, patch map[string]string) error {
	fields := doc.Stats.Fields()
	for key := range patch {
		if _, ok := fields[key]; !ok {
			return fmt.Errorf("%w: stats.%s", models.ErrUnknownField, key)
		}
	}
	for key, value := range patch {
		*fields[key] = value
	}
	return nil
}

func applyMilitary(doc *models.NationDocument, patch MilitaryPatch) {
	n := &doc.Details.Military.Numerical
	setInt64(&n.TroopCount, patch.TroopCount)
	setInt64(&n.TankCount, patch.TankCount)
	setInt64(&n.ShipCount, patch.ShipCount)
	setInt64(&n.AircraftCount, patch.AircraftCount)
	setInt64(&n.NuclearWarheads, patch.NuclearWarheads)
	if patch.ReadinessLevel != nil {
		n.ReadinessLevel = clampReadiness(*patch.ReadinessLevel)
	}
}

// UpdateEconomy replaces the growth rate and the industry list wholesale.
func (s *Session) UpdateEconomy(growthRate string, industries []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireAdmin(); err != nil {
		return err
	}
	return s.mutate(func(doc *models.NationDocument) error {
		doc.Details.Economy.Stats.GDPGrowthRate = growthRate
		doc.Details.Economy.Stats.KeyIndustries = append([]string{}, industries...)
		return nil
	})
}

// UpdateHistory overwrites the narrative of one era.
func (s *Session) UpdateHistory(era models.Era, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireAdmin(); err != nil {
		return err
	}
	return s.mutate(func(doc *models.NationDocument) error {
		target := doc.Details.History.Text(era)
		if target == nil {
			return fmt.Errorf("%w: history.%s", models.ErrUnknownField, era)
		}
		*target = text
		return nil
	})
}

// AddCitizen registers a citizen account. Usernames are case-sensitive and unique.
func (s *Session) AddCitizen(username, password string) (models.Citizen, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireAdmin(); err != nil {
		return models.Citizen{}, err
	}

	var added models.Citizen
	err := s.mutate(func(doc *models.NationDocument) error {
		for _, u := range doc.Users {
			if u.Username == username {
				return fmt.Errorf("%w: %s", models.ErrDuplicateUsername, username)
			}
		}
		added = models.Citizen{Username: username, Password: password, CreatedAt: models.NewMillis(s.now())}
		doc.Users = append(doc.Users, added)
		return nil
	})
	if err != nil {
		return models.Citizen{}, err
	}
	s.logger.Info("Citizen added", "session", s.id, "username", username)
	return added, nil
}

// RemoveCitizen deletes a citizen account. Sessions already logged in as that
// citizen keep their identity until they log out.
func (s *Session) RemoveCitizen(username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireAdmin(); err != nil {
		return err
	}
	return s.mutate(func(doc *models.NationDocument) error {
		for i := range doc.Users {
			if doc.Users[i].Username == username {
				doc.Users = append(doc.Users[:i], doc.Users[i+1:]...)
				return nil
			}
		}
		return errNoChange
	})
}

// FactoryReset deletes the persisted document and logs the session out. The
// next read loads the bootstrap default.
func (s *Session) FactoryReset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireAdmin(); err != nil {
		return err
	}
	if err := s.store.Reset(); err != nil {
		return err
	}
	s.doc, s.loadErr = nil, nil
	s.identity = models.Anonymous()
	s.logger.Warn("Nation document factory reset", "session", s.id)
	return nil
}

// BackupDocument copies the persisted document into the backup directory.
func (s *Session) BackupDocument() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireAdmin(); err != nil {
		return "", err
	}
	return s.store.Backup()
}

// SetEmblem points the flag or coat of arms at a new image URL.
func (s *Session) SetEmblem(kind EmblemKind, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireAdmin(); err != nil {
		return err
	}
	return s.mutate(func(doc *models.NationDocument) error {
		switch kind {
		case EmblemFlag:
			doc.Stats.Flag = url
		case EmblemCoatOfArms:
			doc.Stats.CoatOfArms = url
		default:
			return fmt.Errorf("%w: emblem %q", models.ErrUnknownField, kind)
		}
		return nil
	})
}

func setInt64(dst *int64, v *int64) {
	if v != nil {
		*dst = *v
	}
}

func clampReadiness(v int) int {
	return min(max(v, 0), 100)
}
