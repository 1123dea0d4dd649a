package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"porthound/config"
	"porthound/database"
	"porthound/export"
	"porthound/models"
	"porthound/router"
	"porthound/scanner"
	"porthound/service"

	"github.com/gin-gonic/gin"
)

func main() {
	var (
		targets       = flag.String("t", "", "target host: IP, last-octet range (A.B.C.D-A.B.C.E) or hostname")
		ports         = flag.String("p", "", "ports to scan, e.g. 22,80,1000-2000 (default from config)")
		serviceDetect = flag.Bool("s", false, "grab banners and identify services on open ports")
		output        = flag.String("o", "", "write the report to a file (.json or .csv)")
		timeoutMS     = flag.Int("timeout", 0, "connect timeout in milliseconds (default from config)")
		concurrency   = flag.Int("concurrency", 0, "max simultaneous probes (default from config)")
		configPath    = flag.String("config", "config/config.yaml", "path to config file")
		serverMode    = flag.Bool("server", false, "run the API server instead of a one-shot scan")
	)
	flag.Parse()

	cfg := config.LoadConfig(*configPath)

	if *serverMode {
		runServer(cfg)
		return
	}

	if *targets == "" {
		flag.Usage()
		os.Exit(2)
	}

	runScan(cfg, *targets, *ports, *serviceDetect, *output, *timeoutMS, *concurrency)
}

func runScan(cfg *config.Config, targets, ports string, serviceDetect bool, output string, timeoutMS, concurrency int) {
	hostExpr, err := resolveTarget(targets)
	if err != nil {
		log.Fatalf("Failed to resolve target: %v", err)
	}

	if ports == "" {
		ports = cfg.Scanner.DefaultPorts
	}

	opts := scanner.Options{
		Concurrency:   concurrency,
		ServiceDetect: serviceDetect,
		BannerTimeout: time.Duration(cfg.Scanner.BannerTimeoutMS) * time.Millisecond,
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = cfg.Scanner.Concurrency
	}
	if timeoutMS > 0 {
		opts.Timeout = time.Duration(timeoutMS) * time.Millisecond
	} else {
		opts.Timeout = time.Duration(cfg.Scanner.TimeoutMS) * time.Millisecond
	}

	var identifier *scanner.Identifier
	if serviceDetect {
		identifier = scanner.NewIdentifier(config.LoadServiceDB(cfg.Scanner.ServiceFile))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	engine := scanner.NewEngine(opts, identifier)
	report, err := engine.Scan(ctx, hostExpr, ports)
	if err != nil {
		log.Fatalf("Scan failed: %v", err)
	}

	printSummary(report)

	if output != "" {
		if err := export.Save(output, report); err != nil {
			log.Fatalf("Export failed: %v", err)
		}
		log.Printf("Report written to %s", output)
	}
}

// resolveTarget accepts an IP, a last-octet range or a hostname. A
// hostname resolves to its first IPv4 address.
func resolveTarget(target string) (string, error) {
	if net.ParseIP(target) != nil || strings.Contains(target, "-") {
		return target, nil
	}

	addrs, err := net.LookupIP(target)
	if err != nil {
		return "", fmt.Errorf("lookup %s: %w", target, err)
	}
	for _, addr := range addrs {
		if v4 := addr.To4(); v4 != nil {
			log.Printf("[Main] Resolved %s to %s", target, v4)
			return v4.String(), nil
		}
	}
	return "", fmt.Errorf("no IPv4 address for %s", target)
}

func printSummary(report *models.ScanReport) {
	fmt.Printf("\nScan of %s ports %s: %d open / %d probed\n\n",
		report.HostExpr, report.PortExpr, report.OpenCount, len(report.Entries))

	for _, e := range report.OpenEntries() {
		line := fmt.Sprintf("%s:%d open", e.Host, e.Port)
		if e.Service != nil {
			line += fmt.Sprintf("  %s (%s)", e.Service.Name, e.Service.Confidence)
			if e.Service.Title != "" {
				line += fmt.Sprintf("  title=%q", e.Service.Title)
			}
		}
		if e.Banner != "" {
			line += fmt.Sprintf("  banner=%q", e.Banner)
		}
		fmt.Println(line)
	}
}

func runServer(cfg *config.Config) {
	gin.SetMode(cfg.Server.Mode)

	database.InitMongoDB(&cfg.MongoDB)
	defer database.CloseMongoDB()

	database.InitRedis(&cfg.Redis)
	defer database.CloseRedis()

	userService := service.NewUserService()
	if err := userService.InitAdmin(); err != nil {
		log.Printf("Warning: Failed to initialize admin user: %v", err)
	}

	log.Println("Starting task executor...")
	taskExecutor := service.NewTaskExecutor(cfg.Scanner.Workers)
	taskExecutor.Start()
	defer taskExecutor.Stop()

	r := router.SetupRouter()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Server starting on %s", addr)

	go func() {
		if err := r.Run(addr); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
}
