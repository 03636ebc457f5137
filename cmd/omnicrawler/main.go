package main

import (
	"fmt"
	"os"

	"gopkg.in/urfave/cli.v1"

	"github.com/andrewyi/omnicrawler/src/server"
)

func main() {

	app := cli.NewApp()

	app.Name = "omnicrawler"
	app.Version = "0.1.0"
	app.Description = "抓取omnipedia某一日期下的全部页面及历史版本，导出hover与链接"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config,c",
			Usage: "配置文件",
			Value: "./config.yaml",
		},
		cli.StringFlag{
			Name:  "date,d",
			Usage: "抓取的日期，例如 2049/09/28，覆盖配置文件",
		},
	}

	s := server.NewServer()
	app.Action = s.Start

	err := app.Run(os.Args)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
