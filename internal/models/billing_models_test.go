package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPackageStatusAt(t *testing.T) {
	now := time.Date(2026, time.August, 28, 12, 0, 0, 0, time.UTC)
	past := now.AddDate(0, 0, -1)
	future := now.AddDate(0, 0, 30)

	cases := []struct {
		name string
		pkg  Package
		want string
	}{
		{"healthy", Package{TotalCredits: 10, UsedCredits: 3}, PackageStatusActive},
		{"one credit left", Package{TotalCredits: 10, UsedCredits: 9}, PackageStatusLow},
		{"no credits left", Package{TotalCredits: 10, UsedCredits: 10}, PackageStatusLow},
		{"expired", Package{TotalCredits: 10, UsedCredits: 3, ExpiresOn: &past}, PackageStatusExpired},
		{"expired beats empty", Package{TotalCredits: 10, UsedCredits: 10, ExpiresOn: &past}, PackageStatusExpired},
		{"future expiry stays active", Package{TotalCredits: 10, UsedCredits: 3, ExpiresOn: &future}, PackageStatusActive},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.pkg.StatusAt(now))
		})
	}
}

func TestPackageSessionsRemaining(t *testing.T) {
	pkg := Package{TotalCredits: 10, UsedCredits: 4}
	assert.Equal(t, 6, pkg.SessionsRemaining())

	exhausted := Package{TotalCredits: 5, UsedCredits: 5}
	assert.Equal(t, 0, exhausted.SessionsRemaining())
}
