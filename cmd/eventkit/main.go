// eventkit 是活动目录服务的命令行入口。
//
// 用法:
//
//	eventkit [全局选项] <命令> [命令参数]
//
// 全局选项:
//
//	-c, --config     配置文件路径（yaml/json），缺省使用内置默认值
//	-l, --log-level  覆盖配置中的日志级别
//
// 命令:
//
//	serve                          运行缓存清理、统计与配置监视，直到收到退出信号
//	events [--category] [--query]  列出即将举行的活动
//	categories                     列出全部分类
//	create-event                   创建活动
//	rsvp <event> <user> <status>   更新报名状态（going/maybe/not_going）
//	profile <user>                 创建或更新用户资料
//	recommend <user> [--limit]     为用户推荐活动
//
// 退出码:
//
//	0: 成功
//	1: 执行失败
//	2: 参数错误
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
)

// 版本信息（可通过 -ldflags 注入）。
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// createApp 创建 CLI 应用。
func createApp(stdout, stderr io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "eventkit",
		Usage:     "活动目录与缓存服务",
		Version:   fmt.Sprintf("%s (commit: %s)", Version, GitCommit),
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "配置文件路径",
				Sources: cli.EnvVars("EVENTKIT_CONFIG"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "日志级别 (debug/info/warn/error)",
			},
		},
		Commands: createCommands(),
		// 设计决策: 禁止 urfave/cli 直接调用 os.Exit，由 run() 统一映射退出码。
		ExitErrHandler: func(_ context.Context, _ *cli.Command, err error) {
			if _, ok := err.(cli.ExitCoder); ok {
				fmt.Fprintln(stderr, err)
			}
		},
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if err := createApp(stdout, stderr).Run(ctx, args); err != nil {
		var usageErr *usageError
		if errors.As(err, &usageErr) {
			fmt.Fprintf(stderr, "参数错误: %v\n", usageErr)
			return 2
		}
		fmt.Fprintf(stderr, "错误: %v\n", err)
		return 1
	}
	return 0
}
