// Command skillshare-client is an interactive shell for the SkillShare API.
package main

import (
	"flag"
	"log"

	"github.com/abiosoft/ishell"

	"skillshare/client"
)

func main() {
	configPath := flag.String("config", "skillshare-client.json", "where host and session are stored")
	flag.Parse()

	config, err := readConfig(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	c := client.NewClient(config.Host, client.DefaultTimeout)
	c.SetToken(config.Token)

	shell := ishell.New()
	shell.Set("client", c)
	shell.Set("config", config)
	shell.Println("SkillShare client for", config.Host)

	commands := []*ishell.Cmd{
		{Name: "host", Help: "set the server address", Func: setHost},
		{Name: "signup", Help: "create an account", Func: signup},
		{Name: "login", Help: "sign in", Func: login},
		{Name: "me", Help: "show the signed in user", Func: me},
		{Name: "conversations", Help: "list conversations", Func: conversations},
		{Name: "open", Help: "open <user>: show the thread and mark it read", Func: openThread},
		{Name: "send", Help: "send <user> <text>", Func: send},
		{Name: "watch", Help: "watch [poll|stream]: follow conversation updates", Func: watch},
		{Name: "unwatch", Help: "stop following updates", Func: unwatch},
		{Name: "upgrade", Help: "become a creator", Func: upgrade},
	}
	for _, cmd := range commands {
		shell.AddCmd(cmd)
	}

	shell.Run()
	stopWatching(shell)
}
