package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"pado/internal/api"
	"pado/internal/auth"
	"pado/internal/backend"
	"pado/internal/config"
	"pado/internal/local"
	"pado/internal/logging"
	"pado/internal/registry"
	"pado/internal/share"
	"pado/internal/store"
	"pado/internal/ui"
)

func main() {
	cfg, err := config.LoadOrCreate(config.ResolveConfigPath())
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logging.New(cfg.LogPath, cfg.LogLevel)
	if err != nil {
		fmt.Printf("failed to open log: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx := context.Background()

	var b backend.Backend
	localOnly := false
	if cfg.Backend == "local" {
		st, err := local.Open(cfg.DBPath)
		if err != nil {
			fmt.Printf("failed to open database: %v\n", err)
			os.Exit(1)
		}
		defer st.Close()
		b = st
		localOnly = true
	} else {
		client, err := api.New(cfg.ServerURL, log)
		if err != nil {
			fmt.Printf("failed to build client: %v\n", err)
			os.Exit(1)
		}
		svc := auth.NewService(client)

		if len(os.Args) > 1 {
			switch os.Args[1] {
			case "signup":
				runSignup(ctx, svc)
				return
			case "reset":
				runReset(ctx, svc)
				return
			}
		}

		username, password := cfg.Username, cfg.Password
		in := bufio.NewReader(os.Stdin)
		if username == "" {
			username = prompt(in, "Username: ")
		}
		if password == "" {
			password = prompt(in, "Password: ")
		}
		if _, err := svc.Login(ctx, username, password); err != nil {
			fmt.Printf("login failed: %v\n", err)
			os.Exit(1)
		}
		b = client
	}

	reg := registry.New(b, log)
	tasks := store.New(b, store.DeletePolicy(cfg.DeletePolicy), log)
	shares := share.New(b, log)

	if err := ui.Run(reg, tasks, shares, cfg, localOnly, log); err != nil {
		fmt.Printf("error running program: %v\n", err)
		os.Exit(1)
	}
}

func prompt(in *bufio.Reader, label string) string {
	fmt.Print(label)
	line, _ := in.ReadString('\n')
	return strings.TrimSpace(line)
}

func runSignup(ctx context.Context, svc *auth.Service) {
	in := bufio.NewReader(os.Stdin)
	username := prompt(in, "Username: ")
	name := prompt(in, "Display name: ")
	security := prompt(in, "Security answer: ")
	password := prompt(in, "Password: ")

	res, err := svc.Signup(ctx, username, name, security, password)
	if err != nil {
		fmt.Printf("signup failed: %v\n", err)
		os.Exit(1)
	}
	if res.Message != "" {
		fmt.Println(res.Message)
	} else {
		fmt.Println("Account created.")
	}
}

func runReset(ctx context.Context, svc *auth.Service) {
	in := bufio.NewReader(os.Stdin)
	username := prompt(in, "Username: ")
	security := prompt(in, "Security answer: ")
	newPassword := prompt(in, "New password: ")

	res, err := svc.ResetPassword(ctx, username, security, newPassword)
	if err != nil {
		fmt.Printf("reset failed: %v\n", err)
		os.Exit(1)
	}
	if res.Message != "" {
		fmt.Println(res.Message)
	} else {
		fmt.Println("Password has been reset.")
	}
}
