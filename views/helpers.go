package views

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/AdamBeresnev/matchday-pool/internal/middleware"
	"github.com/AdamBeresnev/matchday-pool/internal/pool"
	users "github.com/AdamBeresnev/matchday-pool/internal/user"
)

type LoginData struct {
	Providers []string
	Error     string
}

func GetUser(ctx context.Context) *users.User {
	return middleware.GetAuthenticatedUser(ctx)
}

func formatKickoff(t time.Time) string {
	return t.UTC().Format("Mon 02 Jan 15:04 MST")
}

func formatPoints(p *pool.Points) string {
	if p == nil {
		return "pending"
	}
	return fmt.Sprintf("%d", *p)
}

// goals is the value of a score input, empty until the user predicted the match.
func goals(p *pool.Scoreline, home bool) string {
	if p == nil {
		return ""
	}
	if home {
		return strconv.Itoa(p.Home)
	}
	return strconv.Itoa(p.Away)
}

func formatResult(s pool.Scoreline) string {
	return fmt.Sprintf("%d - %d", s.Home, s.Away)
}
