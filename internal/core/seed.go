package core

import (
	"context"
	"strings"
)

// DefaultSpecialites are the tracks provisioned on a fresh installation.
var DefaultSpecialites = []string{
	"Licence Génie Industriel",
	"Licence Génie Informatique",
	"Mastére Industrie v4.0",
	"Génie Civil",
	"Génie Procédés",
	"Génie Télécommunication",
	"Génie Industriel",
	"Génie Informatique",
	"Génie Mécanique",
}

// SeedSpecialites creates the named tracks that do not exist yet, matching
// names case-insensitively. It returns the number of tracks created.
func (s *Service) SeedSpecialites(ctx context.Context, names []string) (int, error) {
	created := 0
	_, err := s.write(ctx, "seed_specialites", func() string { return "" }, func(tx Transaction) error {
		existing := make(map[string]struct{})
		for _, sp := range tx.Snapshot().ListSpecialites() {
			existing[strings.ToLower(strings.TrimSpace(sp.Name))] = struct{}{}
		}
		for _, name := range names {
			key := strings.ToLower(strings.TrimSpace(name))
			if key == "" {
				continue
			}
			if _, ok := existing[key]; ok {
				continue
			}
			if _, err := tx.CreateSpecialite(Specialite{Name: strings.TrimSpace(name)}); err != nil {
				return err
			}
			existing[key] = struct{}{}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if created > 0 {
		s.logger.Info("specialites seeded", "created", created)
	}
	return created, nil
}
