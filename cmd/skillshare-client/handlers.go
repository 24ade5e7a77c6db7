package main

import (
	"context"
	"log"
	"strconv"
	"strings"

	"github.com/abiosoft/ishell"

	"skillshare/client"
	"skillshare/models"
)

type values interface {
	Get(key string) interface{}
	Set(key string, value interface{})
}

func getClient(ctx *ishell.Context) *client.Client {
	c, ok := ctx.Get("client").(*client.Client)
	if !ok {
		log.Panic("no client exists")
	}
	return c
}

func getConfig(ctx *ishell.Context) *Config {
	config, ok := ctx.Get("config").(*Config)
	if !ok {
		log.Panic("no config exists")
	}
	return config
}

func saveSession(ctx *ishell.Context, session *client.Session) {
	config := getConfig(ctx)
	config.Token = session.Token
	if err := config.save(); err != nil {
		ctx.Println("unable to save config:", err)
	}
	ctx.Printf("signed in as %s (%s)\n", session.User.DisplayName(), session.User.Role)
}

func setHost(ctx *ishell.Context) {
	ctx.Print("Enter the host to communicate with: ")
	host := strings.TrimSpace(ctx.ReadLine())

	config := getConfig(ctx)
	config.Host = host
	config.Token = ""
	ctx.Set("client", client.NewClient(host, client.DefaultTimeout))
	if err := config.save(); err != nil {
		ctx.Println(err)
	}
}

func signup(ctx *ishell.Context) {
	ctx.Print("email: ")
	email := ctx.ReadLine()
	ctx.Print("name: ")
	name := ctx.ReadLine()
	ctx.Print("password: ")
	password := ctx.ReadPassword()

	session, err := getClient(ctx).Signup(context.Background(), email, password, name)
	if err != nil {
		ctx.Println(err)
		return
	}
	saveSession(ctx, session)
	ctx.Println("a verification code was sent to", email)
}

func login(ctx *ishell.Context) {
	ctx.Print("email: ")
	email := ctx.ReadLine()
	ctx.Print("password: ")
	password := ctx.ReadPassword()

	session, err := getClient(ctx).Login(context.Background(), email, password)
	if err != nil {
		ctx.Println(err)
		return
	}
	saveSession(ctx, session)
}

func me(ctx *ishell.Context) {
	u, err := getClient(ctx).Me(context.Background())
	if err != nil {
		ctx.Println(err)
		return
	}
	ctx.Printf("%s <%s> %s verified=%t\n", u.DisplayName(), u.Email, u.Role, u.EmailVerified)
	if u.Creator != nil {
		ctx.Printf("%s, %s: %s\n", u.Creator.University, u.Creator.Major, strings.Join(u.Creator.Skills, ", "))
	}
}

func printConversations(ctx *ishell.Context, convs []models.ConversationSummary) {
	if len(convs) == 0 {
		ctx.Println("no conversations yet")
		return
	}
	for _, conv := range convs {
		unread := ""
		if conv.UnreadCount > 0 {
			unread = " (" + strconv.FormatInt(conv.UnreadCount, 10) + " unread)"
		}
		ctx.Printf("%-30s %s%s\n    %s\n", conv.OtherUserName, conv.LastMessageTime.Local().Format("Jan 2 15:04"), unread, conv.LastMessage)
	}
}

func conversations(ctx *ishell.Context) {
	convs, err := getClient(ctx).Conversations(context.Background())
	if err != nil {
		ctx.Println(err)
		return
	}
	printConversations(ctx, convs)
}

func openThread(ctx *ishell.Context) {
	if len(ctx.Args) != 1 {
		ctx.Println("usage: open <user>")
		return
	}
	messages, err := getClient(ctx).Messages(context.Background(), ctx.Args[0])
	if err != nil {
		ctx.Println(err)
		return
	}
	for _, m := range messages {
		ctx.Printf("[%s] %s: %s\n", m.Timestamp.Local().Format("Jan 2 15:04"), m.SenderName, m.Content)
		for _, a := range m.Attachments {
			ctx.Println("    attachment:", a)
		}
	}
}

func send(ctx *ishell.Context) {
	if len(ctx.Args) < 2 {
		ctx.Println("usage: send <user> <text>")
		return
	}
	msg, err := getClient(ctx).SendMessage(context.Background(), ctx.Args[0], strings.Join(ctx.Args[1:], " "))
	if err != nil {
		ctx.Println(err)
		return
	}
	ctx.Println("sent", msg.ID)
}

func watch(ctx *ishell.Context) {
	stopWatching(ctx)

	c := getClient(ctx)
	var sub client.Subscriber
	mode := "poll"
	if len(ctx.Args) > 0 {
		mode = ctx.Args[0]
	}
	switch mode {
	case "poll":
		poller := client.NewPoller(c, client.DefaultPollInterval)
		poller.OnError = func(err error) { ctx.Println("refresh failed:", err) }
		sub = poller
	case "stream":
		stream := client.NewStream(c)
		stream.OnError = func(err error) { ctx.Println("refresh failed:", err) }
		sub = stream
	default:
		ctx.Println("usage: watch [poll|stream]")
		return
	}

	watchCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	ctx.Set("watch", func() {
		cancel()
		<-done
	})
	go func() {
		defer close(done)
		err := sub.Subscribe(watchCtx, func(convs []models.ConversationSummary) {
			ctx.Println("--- conversations updated ---")
			printConversations(ctx, convs)
		})
		if err != nil {
			ctx.Println("watch stopped:", err)
		}
	}()
	ctx.Printf("watching conversations (%s)\n", mode)
}

func unwatch(ctx *ishell.Context) {
	if stopWatching(ctx) {
		ctx.Println("stopped watching")
	}
}

func stopWatching(v values) bool {
	stop, ok := v.Get("watch").(func())
	if !ok || stop == nil {
		return false
	}
	v.Set("watch", nil)
	stop()
	return true
}

func upgrade(ctx *ishell.Context) {
	ctx.Print("university: ")
	university := ctx.ReadLine()
	ctx.Print("major: ")
	major := ctx.ReadLine()
	ctx.Print("skills (comma separated): ")
	var skills []string
	for _, s := range strings.Split(ctx.ReadLine(), ",") {
		if s = strings.TrimSpace(s); s != "" {
			skills = append(skills, s)
		}
	}

	session, err := getClient(ctx).UpgradeRole(context.Background(), client.CreatorData{
		University: university,
		Major:      major,
		Skills:     skills,
	})
	if err != nil {
		ctx.Println(err)
		return
	}
	saveSession(ctx, session)
}
