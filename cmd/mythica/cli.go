package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/urfave/cli/v2"

	"github.com/chronos-mythica/mythica/internal/api"
	"github.com/chronos-mythica/mythica/internal/config"
	"github.com/chronos-mythica/mythica/internal/errors"
	"github.com/chronos-mythica/mythica/internal/generate"
	"github.com/chronos-mythica/mythica/internal/mcp"
	"github.com/chronos-mythica/mythica/internal/ops"
	"github.com/chronos-mythica/mythica/internal/prose"
	"github.com/chronos-mythica/mythica/internal/provider"
	"github.com/chronos-mythica/mythica/internal/web"
)

// maxStdinBytes bounds letter text piped to narrate letter.
const maxStdinBytes = 1 << 20

// env carries what every command needs. It is nil for help and version.
type env struct {
	db     *sqlx.DB
	cfg    *config.Config
	logger *slog.Logger

	// stdin is os.Stdin unless a test replaces it.
	stdin io.Reader
}

func (e *env) input() io.Reader {
	if e.stdin != nil {
		return e.stdin
	}
	return os.Stdin
}

// newGenerator wires the provider client and the offline engine from config.
func (e *env) newGenerator() *generate.Generator {
	client := provider.New(e.cfg.ProviderBaseURL,
		provider.WithTimeout(time.Duration(e.cfg.ProviderTimeoutSeconds)*time.Second),
		provider.WithAppInfo(e.cfg.AppReferer, e.cfg.AppTitle),
	)
	return generate.New(prose.New(nil), client,
		generate.WithDefaultModel(e.cfg.DefaultModel),
		generate.WithLogger(e.logger),
	)
}

// newCLIApp creates the CLI application with all commands.
func newCLIApp(e *env) *cli.App {
	app := &cli.App{
		Name:    "mythica",
		Usage:   "Mythic journal server: memories, constellations, and letters to the future",
		Version: Version,
		Commands: []*cli.Command{
			serveCmd(e),
			mcpCmd(e),
			userCmd(e),
			tokenCmd(e),
			profileCmd(e),
			narrateCmd(e),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// serveCmd creates the serve command.
func serveCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API and manuscript reader",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Usage: "Interface to listen on (overrides config)"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "Port to listen on (overrides config)"},
			&cli.BoolFlag{Name: "no-reader", Usage: "Serve the JSON API only"},
		},
		Action: func(c *cli.Context) error {
			cfg := *e.cfg
			if c.IsSet("bind") {
				cfg.Bind = c.String("bind")
			}
			if c.IsSet("port") {
				cfg.Port = c.Int("port")
			}
			if err := cfg.Validate(); err != nil {
				return outputError(errors.NewInvalidRequest(err.Error()))
			}

			var reader http.Handler
			if !c.Bool("no-reader") {
				h, err := web.NewReader(e.db, e.logger, Version)
				if err != nil {
					return outputError(errors.NewInternal(err))
				}
				reader = h
			}

			router := api.NewRouter(e.db, e.newGenerator(), e.logger, reader)

			ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return api.Run(ctx, api.NewServer(&cfg, router), e.logger)
		},
	}
}

// mcpCmd creates the mcp command.
func mcpCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve MCP tools over stdio",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "user", Aliases: []string{"u"}, Usage: "User ID the tools act as (overrides config)"},
		},
		Action: func(c *cli.Context) error {
			cfg := *e.cfg
			if c.IsSet("user") {
				cfg.MCPUserID = c.String("user")
			}
			if unknown := mcp.ValidateDisabledTools(cfg.DisabledTools); len(unknown) > 0 {
				e.logger.Warn("unknown tools in disabled_tools", "tools", unknown)
			}
			if cfg.MCPUserID == "" {
				e.logger.Warn("mcp_user_id is not set; journal tools will return UNAUTHORIZED")
			}
			return mcp.Run(mcp.NewServer(e.db, e.newGenerator(), &cfg, Version))
		},
	}
}

// userCmd creates the user command.
func userCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "user",
		Usage: "Manage users",
		Subcommands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Create a user and print its first token",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Required: true, Usage: "Email address"},
					&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Display name"},
				},
				Action: func(c *cli.Context) error {
					out, err := ops.CreateUser(c.Context, e.db, ops.CreateUserInput{
						Email:       c.String("email"),
						DisplayName: c.String("name"),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c.App.Writer, out)
				},
			},
		},
	}
}

// tokenCmd creates the token command.
func tokenCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "Manage bearer tokens",
		Subcommands: []*cli.Command{
			{
				Name:  "issue",
				Usage: "Issue an additional token for a user",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "user", Aliases: []string{"u"}, Required: true, Usage: "User ID"},
					&cli.StringFlag{Name: "label", Aliases: []string{"l"}, Value: "cli", Usage: "Token label"},
				},
				Action: func(c *cli.Context) error {
					token, err := ops.IssueToken(c.Context, e.db, c.String("user"), c.String("label"))
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c.App.Writer, map[string]string{"token": token})
				},
			},
		},
	}
}

// profileCmd creates the profile command.
func profileCmd(e *env) *cli.Command {
	userFlag := func() cli.Flag {
		return &cli.StringFlag{Name: "user", Aliases: []string{"u"}, Required: true, Usage: "User ID"}
	}
	return &cli.Command{
		Name:  "profile",
		Usage: "Show or change provider settings",
		Subcommands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Print a user's profile",
				Flags: []cli.Flag{userFlag()},
				Action: func(c *cli.Context) error {
					view, err := ops.GetProfile(c.Context, e.db, c.String("user"))
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c.App.Writer, view)
				},
			},
			{
				Name:  "set",
				Usage: "Update display name, provider key, or preferred model",
				Flags: []cli.Flag{
					userFlag(),
					&cli.StringFlag{Name: "name", Usage: "Display name"},
					&cli.StringFlag{Name: "api-key", Usage: "OpenRouter API key (empty string clears it)"},
					&cli.StringFlag{Name: "model", Usage: "Preferred model (empty string restores the default)"},
				},
				Action: func(c *cli.Context) error {
					var input ops.UpdateProfileInput
					if c.IsSet("name") {
						input.DisplayName = ptr(c.String("name"))
					}
					if c.IsSet("api-key") {
						input.OpenRouterAPIKey = ptr(c.String("api-key"))
					}
					if c.IsSet("model") {
						input.PreferredModel = ptr(c.String("model"))
					}
					view, err := ops.UpdateProfile(c.Context, e.db, c.String("user"), input)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c.App.Writer, view)
				},
			},
		},
	}
}

// narrateCmd creates the narrate command. It generates without storing.
func narrateCmd(e *env) *cli.Command {
	credentialFlags := func() []cli.Flag {
		return []cli.Flag{
			&cli.StringFlag{Name: "user", Aliases: []string{"u"}, Usage: "Use this user's stored key and model"},
			&cli.StringFlag{Name: "api-key", Usage: "Use this provider key instead of a stored one"},
			&cli.StringFlag{Name: "model", Usage: "Model to use with --api-key"},
			&cli.BoolFlag{Name: "offline", Usage: "Skip the provider and use the built-in narrator"},
		}
	}

	return &cli.Command{
		Name:  "narrate",
		Usage: "Generate mythic prose or a future-self response",
		Subcommands: []*cli.Command{
			{
				Name:  "memory",
				Usage: "Rewrite a memory as mythic prose",
				Flags: append([]cli.Flag{
					&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Memory title"},
					&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "What happened"},
					&cli.StringFlag{Name: "emotions", Usage: "Comma-separated emotion names, primary first"},
					&cli.StringFlag{Name: "date", Usage: "Memory date, YYYY-MM-DD"},
				}, credentialFlags()...),
				Action: func(c *cli.Context) error {
					return e.narrate(c, generate.MemoryNarration{
						Title:       c.String("title"),
						Description: c.String("description"),
						Emotions:    parseList(c.String("emotions")),
						Date:        c.String("date"),
					})
				},
			},
			{
				Name:  "letter",
				Usage: "Answer a letter as the future self (reads the letter from stdin without --content)",
				Flags: append([]cli.Flag{
					&cli.StringFlag{Name: "content", Aliases: []string{"c"}, Usage: "Letter text"},
					&cli.StringFlag{Name: "unlock-date", Usage: "Unlock date, YYYY-MM-DD"},
				}, credentialFlags()...),
				Action: func(c *cli.Context) error {
					content := c.String("content")
					if !c.IsSet("content") {
						text, err := readStdin(e.input(), maxStdinBytes)
						if err != nil {
							return outputError(errors.NewInvalidRequest(err.Error()))
						}
						content = text
					}
					return e.narrate(c, generate.FutureResponse{
						LetterContent: content,
						UnlockDate:    c.String("unlock-date"),
					})
				},
			},
		},
	}
}

func (e *env) narrate(c *cli.Context, req generate.Request) error {
	cred, err := e.credential(c.Context, c)
	if err != nil {
		return outputError(err)
	}

	gen := generate.New(prose.New(nil), nil)
	if !c.Bool("offline") {
		gen = e.newGenerator()
	}

	res, err := gen.Generate(c.Context, req, cred)
	if err != nil {
		return outputError(errors.NewInternal(err))
	}
	fmt.Fprintln(c.App.Writer, res.Text)
	e.logger.Debug("narration complete", "kind", req.Kind(), "source", res.Source)
	return nil
}

// credential resolves --api-key first, then --user's stored key.
func (e *env) credential(ctx context.Context, c *cli.Context) (*generate.Credential, error) {
	if key := strings.TrimSpace(c.String("api-key")); key != "" {
		return &generate.Credential{APIKey: key, Model: c.String("model")}, nil
	}
	if user := c.String("user"); user != "" {
		return ops.CredentialFor(ctx, e.db, user)
	}
	return nil, nil
}

// Helper functions

// outputJSON writes v as indented JSON.
func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI. Internal causes are not shown.
func outputError(err error) error {
	code, message, _ := errors.Public(err)
	if code == errors.ErrInternal {
		slog.Error("command failed", "error", err)
	}
	return cli.Exit(fmt.Sprintf("[%s] %s", code, message), 1)
}

// readStdin reads at most limit bytes of trimmed text from r.
func readStdin(r io.Reader, limit int64) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return "", err
	}
	if int64(len(data)) > limit {
		return "", fmt.Errorf("input exceeds %d bytes", limit)
	}
	return strings.TrimSpace(string(data)), nil
}

// parseList splits a comma-separated string, dropping empty entries.
func parseList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			items = append(items, t)
		}
	}
	return items
}

func ptr(s string) *string { return &s }
