package bot

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/votebot/core/bootstrap"
	"github.com/m3rciful/votebot/core/logger"
	coretelegram "github.com/m3rciful/votebot/core/telegram"
	"github.com/m3rciful/votebot/core/telegram/commands"
	tghelpers "github.com/m3rciful/votebot/core/telegram/helpers"
	"github.com/m3rciful/votebot/core/telegram/router"
	"github.com/m3rciful/votebot/internal/poll"
	"github.com/m3rciful/votebot/internal/storage"
	"log/slog"
)

// App holds the wired votebot services.
type App struct {
	cfg *Config
	db  *sqlx.DB

	store     *poll.Store
	session   *poll.Session
	clicks    *poll.Clicks
	messenger *telegramMessenger
	directory *telegramDirectory
}

// Bootstrap initializes logging, database, and migrations, then wires the
// poll services on top of the Postgres key-value store.
func Bootstrap(cfg *Config) (*App, error) {
	res, err := bootstrap.Run(bootstrap.Options{
		Config:   cfg.CoreConfig(),
		Database: cfg.Database,
	})
	if err != nil {
		return nil, err
	}

	store := poll.NewStore(storage.NewPostgres(res.DB))
	messenger := newTelegramMessenger()
	directory := newTelegramDirectory(store)
	renderer := poll.NewRenderer(store, messenger, directory)

	return &App{
		cfg:       cfg,
		db:        res.DB,
		store:     store,
		session:   poll.NewSession(store, messenger, directory),
		clicks:    poll.NewClicks(store, renderer, messenger, directory),
		messenger: messenger,
		directory: directory,
	}, nil
}

// TelegramRunOptions assembles the runtime: command registry, middleware
// chain, conversation and payload routes, and lifecycle hooks.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	core := a.cfg.CoreConfig()

	reg := coretelegram.NewRegistry()
	reg.RegisterCommand("/start", commands.Command{
		Handler:     a.handleStart,
		Description: "Create a new poll",
	})
	reg.RegisterCommand("/stats", commands.Command{
		Handler:     a.handleStats,
		Description: "Poll and vote totals",
		AdminOnly:   true,
		Hidden:      true,
	})

	mws := coretelegram.DefaultMiddlewares(core, nil)
	mws = append(mws, a.groupRegistrar())

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminID: core.Telegram.AdminID,
	})
	routes = append(routes,
		router.TextRoute(conversation{session: a.session}, reg, router.TextOptions{}),
		router.PayloadRoute(clickDispatcher{clicks: a.clicks}),
	)

	return coretelegram.RunOptions{
		Config:      core,
		Registry:    reg,
		Middlewares: mws,
		Routes:      routes,
		OnStart: func(_ context.Context, rt coretelegram.Runtime) error {
			a.messenger.Bind(rt.Bot)
			a.directory.Bind(rt.Bot)
			return nil
		},
		OnStop: func(_ context.Context, _ coretelegram.Runtime) error {
			return a.db.Close()
		},
	}, nil
}

func (a *App) handleStart(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	return a.session.HandleStart(ctx, c.Sender().ID, c.Chat().ID)
}

func (a *App) handleStats(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	polls, votes, err := a.store.Counts(ctx)
	if err != nil {
		return err
	}
	return tghelpers.SendText(c, fmt.Sprintf("Polls: %d\nVotes: %d", polls, votes))
}

// groupRegistrar records every group chat the bot sees so the publish
// picker can offer it later.
func (a *App) groupRegistrar() coretelegram.Middleware {
	return coretelegram.Middleware{
		Name: "group_registry",
		Use: func(next tele.HandlerFunc) tele.HandlerFunc {
			return func(c tele.Context) error {
				chat := c.Chat()
				if chat != nil && (chat.Type == tele.ChatGroup || chat.Type == tele.ChatSuperGroup) {
					ctx := tghelpers.BuildContext(c)
					if err := a.store.RegisterGroup(ctx, chat.ID, chat.Title); err != nil {
						logger.Warn(ctx, "tg", "group_registry.fail",
							slog.Int64("chat_id", chat.ID),
							slog.String("err", err.Error()),
						)
					}
				}
				return next(c)
			}
		},
	}
}

// conversation adapts the poll session machine to the text route.
type conversation struct {
	session *poll.Session
}

func (h conversation) HandleText(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	return h.session.HandleText(ctx, c.Sender().ID, c.Chat().ID, c.Text())
}

// clickDispatcher adapts the poll interaction router to the payload route.
// The clicking user's id doubles as the private chat for follow-up prompts.
type clickDispatcher struct {
	clicks *poll.Clicks
}

func (d clickDispatcher) Dispatch(c tele.Context, value string) (bool, error) {
	ctx := tghelpers.BuildContext(c)
	return d.clicks.Dispatch(ctx, poll.Click{UserID: c.Sender().ID, Value: value})
}
