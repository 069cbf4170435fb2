package app

import (
	"flag"
	"fmt"
	"time"

	"bilidm/cmd/internal/biliapi"
	"bilidm/cmd/internal/collect"

	"github.com/go-playground/validator/v10"
)

// Config contains all runtime configuration for one export run, combined
// from CLI flags and environment variables.
type Config struct {
	// TalkerID is the peer account of the conversation to export.
	TalkerID uint64 `validate:"required"`

	// PageSize is the number of messages requested per bounded fetch.
	// The service accepts 20 through 200.
	PageSize int `validate:"min=20,max=200"`

	// Viewpoint selects whose inbox perspective labels the speakers:
	// 0 first-person, 1 third-person.
	Viewpoint int `validate:"oneof=0 1"`

	// TalkerNickname is the display name used for the peer.
	TalkerNickname string `validate:"required"`

	// OutputDir is where the date-named transcript file is written.
	OutputDir string `validate:"required"`

	// Cookie is the authenticated session credential, passed through to the
	// service verbatim.
	Cookie string `validate:"required"`

	APIBase   string        `validate:"required,url"`
	PageDelay time.Duration `validate:"min=0"`

	LogLevel  string
	LogFormat string `validate:"oneof=pretty json"`
	NoColor   bool
}

// LoadConfig parses flags and environment into a validated Config.
//
// The cookie is deliberately also readable from BILIDM_COOKIE (loaded from
// .env by Run) so the credential need not appear in shell history.
func LoadConfig(args []string) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet("bilidm", flag.ContinueOnError)
	fs.Uint64Var(&cfg.TalkerID, "talker-id", 0, "peer account id of the conversation")
	fs.IntVar(&cfg.PageSize, "size", EnvInt("BILIDM_PAGE_SIZE", 200), "messages per page fetch (20-200)")
	fs.IntVar(&cfg.Viewpoint, "viewer", 0, "viewpoint: 0 reads as yourself, 1 as the peer")
	fs.StringVar(&cfg.TalkerNickname, "nickname", "peer", "display name for the peer")
	fs.StringVar(&cfg.OutputDir, "save-path", "", "directory for the transcript file")
	fs.StringVar(&cfg.Cookie, "cookie", EnvString("BILIDM_COOKIE", ""), "session cookie (falls back to BILIDM_COOKIE)")

	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	cfg.APIBase = EnvString("BILIDM_API_BASE", biliapi.DefaultBaseURL)
	cfg.PageDelay = EnvDuration("BILIDM_PAGE_DELAY", collect.DefaultPageDelay)
	cfg.LogLevel = EnvString("BILIDM_LOG_LEVEL", "info")
	cfg.LogFormat = EnvString("BILIDM_LOG_FORMAT", "pretty")
	cfg.NoColor = EnvBool("BILIDM_NO_COLOR", false)

	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(cfg); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}
