package database

import (
	"net"
	"net/url"
	"strconv"

	"github.com/rickgao/dex-buybot/internal/config"
	"github.com/rickgao/dex-buybot/internal/version"
)

// BuildConnString builds a PostgreSQL connection URL from config.
// Credentials are escaped, and the session is tagged with the bot's
// application name so it can be found in pg_stat_activity.
func BuildConnString(cfg config.DBConfig) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "prefer"
	}

	q := url.Values{}
	q.Set("sslmode", sslMode)
	q.Set("application_name", version.Name)

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Path:     "/" + cfg.Name,
		RawQuery: q.Encode(),
	}
	return u.String()
}
