package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/omeyang/eventkit/internal/app"
	"github.com/omeyang/eventkit/pkg/business/xevent"
	"github.com/omeyang/eventkit/pkg/config/xconf"
	"github.com/omeyang/eventkit/pkg/storage/xstore"
)

// usageError 表示参数错误，映射为退出码 2。
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

func createCommands() []*cli.Command {
	return []*cli.Command{
		createServeCommand(),
		createEventsCommand(),
		createCategoriesCommand(),
		createCreateEventCommand(),
		createRSVPCommand(),
		createProfileCommand(),
		createRecommendCommand(),
	}
}

// loadApp 读取配置并装配应用。未指定配置文件时返回的 xconf.Config 为 nil。
func loadApp(cmd *cli.Command) (*app.App, xconf.Config, error) {
	cfg := app.DefaultConfig()
	var src xconf.Config
	if path := cmd.String("config"); path != "" {
		var err error
		if cfg, src, err = app.LoadConfig(path); err != nil {
			return nil, nil, err
		}
	}
	if level := cmd.String("log-level"); level != "" {
		cfg.Log.Level = level
	}
	a, err := app.New(cfg)
	if err != nil {
		if errors.Is(err, app.ErrInvalidConfig) {
			return nil, nil, &usageError{msg: err.Error()}
		}
		return nil, nil, err
	}
	return a, src, nil
}

// withApp 装配应用后执行 fn，结束时释放资源。
func withApp(ctx context.Context, cmd *cli.Command, fn func(ctx context.Context, a *app.App) error) (err error) {
	a, _, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, a.Close()) }()
	return fn(ctx, a)
}

func createServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "运行后台服务直到收到退出信号",
		Action: func(ctx context.Context, cmd *cli.Command) (err error) {
			a, src, err := loadApp(cmd)
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, a.Close()) }()
			return a.Serve(ctx, src)
		},
	}
}

func createEventsCommand() *cli.Command {
	return &cli.Command{
		Name:  "events",
		Usage: "列出即将举行的活动",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "category", Usage: "按分类过滤，all 表示全部"},
			&cli.StringFlag{Name: "query", Aliases: []string{"q"}, Usage: "按标题、描述或地点搜索"},
			&cli.BoolFlag{Name: "json", Usage: "以 JSON 输出"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withApp(ctx, cmd, func(ctx context.Context, a *app.App) error {
				f := xevent.Filter{Category: cmd.String("category"), Query: cmd.String("query")}
				var (
					events []xevent.Event
					err    error
				)
				if f.Query == "" && (f.Category == "" || f.Category == xevent.CategoryAll) {
					events, err = a.Catalog.UpcomingEvents(ctx)
				} else {
					events, err = a.Catalog.Search(ctx, f)
				}
				if err != nil {
					return err
				}
				w := cmd.Root().Writer
				if cmd.Bool("json") {
					return writeJSON(w, events)
				}
				return writeEvents(w, events)
			})
		},
	}
}

func createCategoriesCommand() *cli.Command {
	return &cli.Command{
		Name:  "categories",
		Usage: "列出全部分类",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withApp(ctx, cmd, func(ctx context.Context, a *app.App) error {
				cats, err := a.Catalog.Categories(ctx)
				if err != nil {
					return err
				}
				for _, c := range cats {
					fmt.Fprintln(cmd.Root().Writer, c)
				}
				return nil
			})
		},
	}
}

func createCreateEventCommand() *cli.Command {
	return &cli.Command{
		Name:  "create-event",
		Usage: "创建活动",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "title", Required: true},
			&cli.StringFlag{Name: "category", Required: true},
			&cli.StringFlag{Name: "date", Required: true, Usage: "YYYY-MM-DD"},
			&cli.StringFlag{Name: "time", Usage: "HH:MM"},
			&cli.StringFlag{Name: "description"},
			&cli.StringFlag{Name: "location"},
			&cli.StringFlag{Name: "address"},
			&cli.StringFlag{Name: "organizer", Required: true},
			&cli.IntFlag{Name: "max-attendees", Value: 50},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			e := xevent.Event{
				Title:        cmd.String("title"),
				Category:     cmd.String("category"),
				Date:         cmd.String("date"),
				Time:         cmd.String("time"),
				Description:  cmd.String("description"),
				Location:     cmd.String("location"),
				Address:      cmd.String("address"),
				OrganizerID:  cmd.String("organizer"),
				MaxAttendees: cmd.Int("max-attendees"),
			}
			if err := e.Validate(); err != nil {
				return &usageError{msg: err.Error()}
			}
			return withApp(ctx, cmd, func(ctx context.Context, a *app.App) error {
				created, err := a.Catalog.CreateEvent(ctx, e)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.Root().Writer, created.ID)
				return nil
			})
		},
	}
}

func createRSVPCommand() *cli.Command {
	return &cli.Command{
		Name:      "rsvp",
		Usage:     "更新报名状态",
		ArgsUsage: "<event-id> <user-id> <going|maybe|not_going>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 3 {
				return usagef("rsvp 需要 3 个参数: <event-id> <user-id> <status>")
			}
			eventID, userID := cmd.Args().Get(0), cmd.Args().Get(1)
			status, err := xevent.ParseRSVPStatus(cmd.Args().Get(2))
			if err != nil {
				return &usageError{msg: err.Error()}
			}
			return withApp(ctx, cmd, func(ctx context.Context, a *app.App) error {
				r, err := a.Catalog.UpdateRSVP(ctx, eventID, userID, status)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.Root().Writer, "%s %s %s\n", r.EventID, r.UserID, r.Status)
				return nil
			})
		},
	}
}

// profileFields 是 profile 命令可修改的字段，未显式指定的字段保留原值。
var profileFields = []struct {
	flag  string
	field func(*xevent.Profile) *string
}{
	{"name", func(p *xevent.Profile) *string { return &p.Name }},
	{"email", func(p *xevent.Profile) *string { return &p.Email }},
	{"bio", func(p *xevent.Profile) *string { return &p.Bio }},
	{"location", func(p *xevent.Profile) *string { return &p.Location }},
	{"avatar-url", func(p *xevent.Profile) *string { return &p.AvatarURL }},
}

func createProfileCommand() *cli.Command {
	return &cli.Command{
		Name:      "profile",
		Usage:     "创建或更新用户资料，只修改显式指定的字段",
		ArgsUsage: "<user-id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name"},
			&cli.StringFlag{Name: "email"},
			&cli.StringFlag{Name: "bio", Usage: "兴趣描述，参与推荐打分"},
			&cli.StringFlag{Name: "location", Usage: "所在地，参与推荐打分"},
			&cli.StringFlag{Name: "avatar-url"},
			&cli.BoolFlag{Name: "json", Usage: "以 JSON 输出保存后的资料"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return usagef("profile 需要 1 个参数: <user-id>")
			}
			userID := cmd.Args().First()
			return withApp(ctx, cmd, func(ctx context.Context, a *app.App) error {
				p, err := a.Catalog.Profile(ctx, userID)
				switch {
				case errors.Is(err, xstore.ErrNotFound):
					p = xevent.Profile{ID: userID}
				case err != nil:
					return err
				}
				for _, f := range profileFields {
					if cmd.IsSet(f.flag) {
						*f.field(&p) = cmd.String(f.flag)
					}
				}
				saved, err := a.Catalog.UpdateProfile(ctx, p)
				if err != nil {
					return err
				}
				if cmd.Bool("json") {
					return writeJSON(cmd.Root().Writer, saved)
				}
				fmt.Fprintln(cmd.Root().Writer, saved.ID)
				return nil
			})
		},
	}
}

func createRecommendCommand() *cli.Command {
	return &cli.Command{
		Name:      "recommend",
		Usage:     "为用户推荐活动",
		ArgsUsage: "<user-id>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Value: xevent.DefaultRecommendLimit},
			&cli.BoolFlag{Name: "json", Usage: "以 JSON 输出"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return usagef("recommend 需要 1 个参数: <user-id>")
			}
			limit := cmd.Int("limit")
			if limit <= 0 {
				return usagef("--limit 必须为正数")
			}
			return withApp(ctx, cmd, func(ctx context.Context, a *app.App) error {
				recs, err := a.Catalog.Recommendations(ctx, cmd.Args().First(), limit)
				if err != nil {
					return err
				}
				w := cmd.Root().Writer
				if cmd.Bool("json") {
					return writeJSON(w, recs)
				}
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "SCORE\tID\tDATE\tTITLE\tREASONS")
				for _, r := range recs {
					fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
						r.Score, r.Event.ID, r.Event.Date, r.Event.Title, strings.Join(r.Reasons, "; "))
				}
				return tw.Flush()
			})
		},
	}
}

func writeEvents(w io.Writer, events []xevent.Event) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tTIME\tCATEGORY\tGOING\tTITLE")
	for _, e := range events {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d/%d\t%s\n",
			e.ID, e.Date, e.Time, e.Category, e.AttendeeCount, e.MaxAttendees, e.Title)
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
