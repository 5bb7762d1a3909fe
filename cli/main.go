package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"tubefeed"
	"tubefeed/config"
	"tubefeed/runner"
	"tubefeed/youtube"
)

const defaultConfigPath = "sources_config.yml"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "run":
		cmdRun(args)
	case "list":
		cmdList(args)
	case "sources":
		cmdSources(args)
	case "subscriptions":
		cmdSubscriptions(args)
	case "diagnose":
		cmdDiagnose(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `tubefeed - turn YouTube channels and playlists into podcast feeds

Usage:
  tubefeed run [flags]                      Run one cycle (or loop with -loop)
  tubefeed list [flags] <url>               List candidates of a source URL
  tubefeed sources <list|add|remove|enable|disable> [flags]
  tubefeed subscriptions <list|add|remove|enable|disable> [flags]
  tubefeed diagnose [flags]                 Check connectivity and tooling
  tubefeed help                             Show this help message

Examples:
  tubefeed run                              # One cycle over all subscriptions
  tubefeed run -loop -interval 600          # Poll forever, 10 minutes apart
  tubefeed run -dry-run -subscription news  # Preview one subscription
  tubefeed sources add -name nyt -url https://www.youtube.com/@nyt
  tubefeed sources disable nyt
  tubefeed diagnose -video dQw4w9WgXcQ      # Explain one video's availability

For help on a specific command: tubefeed <command> -h
`)
}

// signalContext returns a context cancelled by SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func loadManager(path string) *config.Manager {
	mgr, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	return mgr
}

func cmdRun(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "Path to configuration file")
	loop := fs.Bool("loop", false, "Keep polling instead of running one cycle")
	interval := fs.Int("interval", 0, "Seconds between cycles (0 = config/default)")
	dryRun := fs.Bool("dry-run", false, "Report what would happen without writing anything")
	subscription := fs.String("subscription", "", "Process only this subscription")
	source := fs.String("source", "", "Process only this source")
	fs.Parse(args)

	mgr := loadManager(*configPath)

	opts := runner.Options{
		Subscription: *subscription,
		Source:       *source,
		DryRun:       *dryRun,
	}
	if *interval > 0 {
		opts.Interval = time.Duration(*interval) * time.Second
	}

	r := tubefeed.NewRunner(mgr, opts)
	if !*dryRun {
		if err := r.AcquireLock(5 * time.Second); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer r.ReleaseLock()
	}

	ctx, cancel := signalContext()
	defer cancel()

	if mgr.Config().DownloadsEnabled() && !*dryRun {
		ytdlp := youtube.NewYtdlp()
		if path := mgr.Config().Download.String("ytdlp_path", ""); path != "" {
			ytdlp.Path = path
		}
		if err := ytdlp.CheckInstalled(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v (run 'tubefeed diagnose' for details)\n", err)
			os.Exit(1)
		}
	}

	var err error
	if *loop {
		err = r.Run(ctx)
	} else {
		_, err = r.RunOnce(ctx)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func cmdList(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	kind := fs.String("kind", "channel", "Source kind: channel or playlist")
	max := fs.Int("max", 5, "Maximum candidates to list")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: tubefeed list [flags] <url>\n\nFlags:\n")
		fs.PrintDefaults()
	}
	fs.Parse(args)

	argv := fs.Args()
	if len(argv) == 0 {
		fmt.Fprintf(os.Stderr, "Error: missing url\n")
		fs.Usage()
		os.Exit(1)
	}

	ytdlp := youtube.NewYtdlp()
	var dir youtube.Directory
	if *kind == "playlist" {
		dir = youtube.NewPlaylistDirectory(ytdlp)
	} else {
		dir = youtube.NewChannelDirectory(ytdlp)
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Fprintf(os.Stderr, "Fetching candidates from %s...\n", argv[0])
	candidates, err := dir.ListCandidates(ctx, argv[0], *max)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error fetching candidates: %v\n", err)
		os.Exit(1)
	}
	if len(candidates) == 0 {
		fmt.Println("No videos found.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "VIDEO ID\tTITLE\tDURATION\tUPLOADED")
	for _, c := range candidates {
		duration := ""
		if c.DurationSeconds > 0 {
			duration = fmt.Sprintf("%d:%02d", c.DurationSeconds/60, c.DurationSeconds%60)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.ID, truncate(c.Title, 60), duration, c.UploadDate)
	}
	w.Flush()
}

func cmdSources(args []string) {
	if len(args) == 0 {
		fmt.Fprintf(os.Stderr, "Usage: tubefeed sources <list|add|remove|enable|disable> [flags]\n")
		os.Exit(1)
	}
	action := args[0]
	args = args[1:]

	switch action {
	case "list":
		fs := flag.NewFlagSet("sources list", flag.ExitOnError)
		configPath := fs.String("config", defaultConfigPath, "Path to configuration file")
		fs.Parse(args)

		mgr := loadManager(*configPath)
		rows := mgr.ListSources()
		if len(rows) == 0 {
			fmt.Println("No sources configured.")
			return
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tSUBSCRIPTION\tKIND\tENABLED\tINTERVAL\tLOOK-BACK\tURL")
		for _, row := range rows {
			fmt.Fprintf(w, "%s\t%s\t%s\t%v\t%dm\t%d\t%s\n",
				row.Name, row.Subscription, row.Kind, row.Enabled,
				row.CheckInterval, row.MaxVideos, row.URL)
		}
		w.Flush()

	case "add":
		fs := flag.NewFlagSet("sources add", flag.ExitOnError)
		configPath := fs.String("config", defaultConfigPath, "Path to configuration file")
		name := fs.String("name", "", "Source name (unique)")
		url := fs.String("url", "", "Channel or playlist URL")
		kind := fs.String("kind", "channel", "Source kind: channel or playlist")
		subscription := fs.String("subscription", "", "Subscription to add to (default: first enabled)")
		interval := fs.Int("interval", 0, "Check interval in minutes (0 = inherit)")
		max := fs.Int("max", 0, "Look-back count (0 = inherit)")
		fs.Parse(args)

		if *name == "" || *url == "" {
			fmt.Fprintf(os.Stderr, "Error: -name and -url are required\n")
			os.Exit(1)
		}

		mgr := loadManager(*configPath)
		src := config.Source{
			Name:          *name,
			URL:           *url,
			Kind:          config.SourceKind(*kind),
			Enabled:       true,
			CheckInterval: *interval,
			MaxVideos:     *max,
		}
		if err := mgr.AddSource(*subscription, src); err != nil {
			fmt.Fprintf(os.Stderr, "Error adding source: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Added source %q\n", *name)

	case "remove", "enable", "disable":
		fs := flag.NewFlagSet("sources "+action, flag.ExitOnError)
		configPath := fs.String("config", defaultConfigPath, "Path to configuration file")
		fs.Parse(args)

		argv := fs.Args()
		if len(argv) == 0 {
			fmt.Fprintf(os.Stderr, "Error: missing source name\n")
			os.Exit(1)
		}
		mgr := loadManager(*configPath)

		var err error
		switch action {
		case "remove":
			err = mgr.RemoveSource(argv[0])
		case "enable":
			err = mgr.SetSourceEnabled(argv[0], true)
		case "disable":
			err = mgr.SetSourceEnabled(argv[0], false)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("%sd source %q\n", action, argv[0])

	default:
		fmt.Fprintf(os.Stderr, "Error: unknown sources action %q\n", action)
		os.Exit(1)
	}
}

func cmdSubscriptions(args []string) {
	if len(args) == 0 {
		fmt.Fprintf(os.Stderr, "Usage: tubefeed subscriptions <list|add|remove|enable|disable> [flags]\n")
		os.Exit(1)
	}
	action := args[0]
	args = args[1:]

	switch action {
	case "list":
		fs := flag.NewFlagSet("subscriptions list", flag.ExitOnError)
		configPath := fs.String("config", defaultConfigPath, "Path to configuration file")
		fs.Parse(args)

		mgr := loadManager(*configPath)
		subs := mgr.Config().Subscriptions
		if len(subs) == 0 {
			fmt.Println("No subscriptions configured.")
			return
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tTITLE\tENABLED\tSOURCES")
		for _, sub := range subs {
			fmt.Fprintf(w, "%s\t%s\t%v\t%d\n", sub.Name, sub.Title, sub.Enabled, len(sub.Sources))
		}
		w.Flush()

	case "add":
		fs := flag.NewFlagSet("subscriptions add", flag.ExitOnError)
		configPath := fs.String("config", defaultConfigPath, "Path to configuration file")
		name := fs.String("name", "", "Subscription name (unique)")
		title := fs.String("title", "", "Feed title (default: name)")
		description := fs.String("description", "", "Feed description")
		category := fs.String("category", "", "Feed category")
		author := fs.String("author", "", "Feed author")
		fs.Parse(args)

		if *name == "" {
			fmt.Fprintf(os.Stderr, "Error: -name is required\n")
			os.Exit(1)
		}

		mgr := loadManager(*configPath)
		sub := config.Subscription{
			Name:        *name,
			Title:       *title,
			Description: *description,
			Category:    *category,
			Author:      *author,
			Enabled:     true,
		}
		if err := mgr.AddSubscription(sub); err != nil {
			fmt.Fprintf(os.Stderr, "Error adding subscription: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Added subscription %q\n", *name)

	case "remove", "enable", "disable":
		fs := flag.NewFlagSet("subscriptions "+action, flag.ExitOnError)
		configPath := fs.String("config", defaultConfigPath, "Path to configuration file")
		fs.Parse(args)

		argv := fs.Args()
		if len(argv) == 0 {
			fmt.Fprintf(os.Stderr, "Error: missing subscription name\n")
			os.Exit(1)
		}
		mgr := loadManager(*configPath)

		var err error
		switch action {
		case "remove":
			err = mgr.RemoveSubscription(argv[0])
		case "enable":
			err = mgr.SetSubscriptionEnabled(argv[0], true)
		case "disable":
			err = mgr.SetSubscriptionEnabled(argv[0], false)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("%sd subscription %q\n", action, argv[0])

	default:
		fmt.Fprintf(os.Stderr, "Error: unknown subscriptions action %q\n", action)
		os.Exit(1)
	}
}

func cmdDiagnose(args []string) {
	fs := flag.NewFlagSet("diagnose", flag.ExitOnError)
	video := fs.String("video", "", "Diagnose a single video ID instead of the network")
	fs.Parse(args)

	ctx, cancel := signalContext()
	defer cancel()

	ytdlp := youtube.NewYtdlp()

	if *video != "" {
		prober := youtube.NewProber(ytdlp, 0)
		diag, err := prober.Diagnose(ctx, *video)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(diag)
		if !diag.Available {
			os.Exit(1)
		}
		return
	}

	checks := youtube.DiagnoseNetwork(ctx, ytdlp)
	failed := 0
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, check := range checks {
		status := "ok"
		if !check.OK {
			status = "FAIL"
			failed++
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", check.Name, status, check.Detail)
	}
	w.Flush()
	if failed > 0 {
		os.Exit(1)
	}
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
