package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/ignatij/trialtasks/internal/config"
	internal_http "github.com/ignatij/trialtasks/internal/http"
	"github.com/ignatij/trialtasks/internal/log"
	internal_storage "github.com/ignatij/trialtasks/internal/storage"
	"github.com/ignatij/trialtasks/pkg/models"
	"github.com/ignatij/trialtasks/pkg/service"
	"github.com/spf13/cobra"
)

// SetupCLI registers the persistent --config/--db flags and every
// subcommand on rootCmd.
func SetupCLI(rootCmd *cobra.Command) {
	rootCmd.PersistentFlags().String("config", "config.yaml", "Configuration file (optional)")
	rootCmd.PersistentFlags().String("db", "", "Database connection string (overrides configuration)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Run: func(cmd *cobra.Command, args []string) {
			cfg := loadConfig(cmd)
			store := initStore(cmd, cfg)
			defer store.Close()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := internal_http.StartServer(ctx, cfg.HTTP.Address, cfg.HTTP.Timeout, store); err != nil {
				log.GetLogger().Errorf("Server failed: %v", err)
				os.Exit(1)
			}
		},
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a task together with its lookup rows",
		Run: func(cmd *cobra.Command, args []string) {
			req := service.CreateTaskRequest{}
			flags := cmd.Flags()
			req.Number, _ = flags.GetString("number")
			req.Title, _ = flags.GetString("title")
			req.Duration, _ = flags.GetString("duration")
			req.NumberOfTarget, _ = flags.GetString("number-of-target")
			req.Type, _ = flags.GetString("type")
			req.Scope, _ = flags.GetString("scope")
			req.Institute, _ = flags.GetString("institute")
			req.TrialStage, _ = flags.GetString("trial-stage")
			req.Department, _ = flags.GetString("department")

			svc, store := newService(cmd)
			defer store.Close()
			createTask(cmd.Context(), svc, req, os.Stdout)
		},
	}
	createCmd.Flags().String("number", "", "Task number (unique)")
	createCmd.Flags().String("title", "", "Task title")
	createCmd.Flags().String("duration", "", "Duration")
	createCmd.Flags().String("number-of-target", "", "Number of targets")
	createCmd.Flags().String("type", "", "Type name")
	createCmd.Flags().String("scope", "", "Scope name")
	createCmd.Flags().String("institute", "", "Institute name")
	createCmd.Flags().String("trial-stage", "", "Trial stage name")
	createCmd.Flags().String("department", "", "Department name")
	_ = createCmd.MarkFlagRequired("number")
	_ = createCmd.MarkFlagRequired("title")

	searchCmd := &cobra.Command{
		Use:   "search",
		Short: "Search tasks, oldest update first",
		Run: func(cmd *cobra.Command, args []string) {
			flags := cmd.Flags()
			filter := models.TaskFilter{Page: pageFlags(cmd)}
			filter.Title, _ = flags.GetString("title")
			filter.Department, _ = flags.GetString("department")
			filter.Institute, _ = flags.GetString("institute")
			filter.Type, _ = flags.GetString("type")
			filter.TrialStage, _ = flags.GetString("trial-stage")
			filter.Scope, _ = flags.GetString("scope")

			svc, store := newService(cmd)
			defer store.Close()
			searchTasks(cmd.Context(), svc, service.SearchTasksRequest{Filter: filter}, os.Stdout)
		},
	}
	searchCmd.Flags().String("title", "", "Title contains (case-insensitive)")
	searchCmd.Flags().String("department", "", "Department equals (case-insensitive)")
	searchCmd.Flags().String("institute", "", "Institute contains")
	searchCmd.Flags().String("type", "", "Type equals")
	searchCmd.Flags().String("trial-stage", "", "Trial stage equals (case-insensitive)")
	searchCmd.Flags().String("scope", "", "Scope equals")
	addPageFlags(searchCmd)

	showCmd := &cobra.Command{
		Use:   "show [id]",
		Short: "Show the details of a task",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				log.GetLogger().Errorf("Error parsing id as number: %v", err)
				fmt.Fprintf(os.Stderr, "Error parsing id as number: %v\n", err)
				os.Exit(1)
			}
			svc, store := newService(cmd)
			defer store.Close()
			showTask(cmd.Context(), svc, id, os.Stdout)
		},
	}

	recentCmd := &cobra.Command{
		Use:   "recent",
		Short: "List tasks updated during the last 7 days",
		Run: func(cmd *cobra.Command, args []string) {
			svc, store := newService(cmd)
			defer store.Close()
			listRecent(cmd.Context(), svc, service.ListRecentRequest{Page: pageFlags(cmd)}, os.Stdout)
		},
	}
	addPageFlags(recentCmd)

	lookupsCmd := &cobra.Command{
		Use:   "lookups [departments|institutes|scopes|trial_stages|types]",
		Short: "List the rows of a lookup table",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			name, _ := cmd.Flags().GetString("name")
			svc, store := newService(cmd)
			defer store.Close()
			listLookups(cmd.Context(), svc, models.LookupKind(args[0]), name, pageFlags(cmd), os.Stdout)
		},
	}
	lookupsCmd.Flags().String("name", "", "Only rows with exactly this name")
	addPageFlags(lookupsCmd)

	rootCmd.AddCommand(serveCmd, createCmd, searchCmd, showCmd, recentCmd, lookupsCmd)
}

func addPageFlags(cmd *cobra.Command) {
	cmd.Flags().Int("offset", models.DefaultOffset, "Rows to skip")
	cmd.Flags().Int("limit", models.DefaultLimit, "Maximum rows to return")
}

func pageFlags(cmd *cobra.Command) models.Page {
	offset, _ := cmd.Flags().GetInt("offset")
	limit, _ := cmd.Flags().GetInt("limit")
	if offset < 0 || limit < 0 {
		fmt.Fprintln(os.Stderr, "Error: offset and limit must not be negative")
		os.Exit(1)
	}
	return models.Page{Offset: offset, Limit: limit}
}

func createTask(ctx context.Context, svc *service.TaskService, req service.CreateTaskRequest, out io.Writer) {
	id, err := svc.CreateTask(ctx, req)
	if err != nil {
		log.GetLogger().Errorf("Failed to create task: %v", err)
		fmt.Fprintf(os.Stderr, "Error: failed to create task: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(out, "Created task '%s' with ID %d\n", req.Number, id)
}

func searchTasks(ctx context.Context, svc *service.TaskService, req service.SearchTasksRequest, out io.Writer) {
	result, err := svc.SearchTasks(ctx, req)
	if err != nil {
		log.GetLogger().Errorf("Failed to search tasks: %v", err)
		fmt.Fprintf(os.Stderr, "Error: failed to search tasks: %v\n", err)
		os.Exit(1)
	}
	printSummaries(out, result.Data)
}

func showTask(ctx context.Context, svc *service.TaskService, id int64, out io.Writer) {
	d, err := svc.GetTaskDetail(ctx, id)
	if err != nil {
		log.GetLogger().Errorf("Failed to get task %d: %v", id, err)
		fmt.Fprintf(os.Stderr, "Error: failed to get task %d: %v\n", id, err)
		os.Exit(1)
	}
	fmt.Fprintf(out, "Number:           %s\n", d.Number)
	fmt.Fprintf(out, "Title:            %s\n", d.Title)
	fmt.Fprintf(out, "Duration:         %s\n", d.Duration)
	fmt.Fprintf(out, "Number of target: %s\n", d.NumberOfTarget)
	fmt.Fprintf(out, "Scope:            %s\n", d.Scope)
	fmt.Fprintf(out, "Type:             %s\n", d.Type)
	fmt.Fprintf(out, "Institute:        %s\n", d.Institute)
	fmt.Fprintf(out, "Trial stage:      %s\n", d.TrialStages)
	fmt.Fprintf(out, "Department:       %s\n", d.Department)
	fmt.Fprintf(out, "Created:          %s\n", d.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(out, "Updated:          %s\n", d.UpdatedAt.Format(time.RFC3339))
}

func listRecent(ctx context.Context, svc *service.TaskService, req service.ListRecentRequest, out io.Writer) {
	result, err := svc.ListRecentlyUpdated(ctx, req)
	if err != nil {
		log.GetLogger().Errorf("Failed to list recent tasks: %v", err)
		fmt.Fprintf(os.Stderr, "Error: failed to list recent tasks: %v\n", err)
		os.Exit(1)
	}
	printSummaries(out, result.Data)
}

func listLookups(ctx context.Context, svc *service.TaskService, kind models.LookupKind, name string, page models.Page, out io.Writer) {
	rows, err := svc.ListLookups(ctx, kind, name, page)
	if err != nil {
		log.GetLogger().Errorf("Failed to list %s: %v", kind, err)
		fmt.Fprintf(os.Stderr, "Error: failed to list %s: %v\n", kind, err)
		os.Exit(1)
	}
	if len(rows) == 0 {
		fmt.Fprintf(out, "No %s found.\n", kind)
		return
	}
	for _, row := range rows {
		fmt.Fprintf(out, "- ID: %d, Name: %s, Created: %s\n", row.ID, row.NameOrEmpty(), row.CreatedAt.Format(time.RFC3339))
	}
}

func printSummaries(out io.Writer, tasks []models.TaskSummary) {
	if len(tasks) == 0 {
		fmt.Fprintf(out, "No tasks found.\n")
		return
	}
	fmt.Fprintf(out, "Tasks:\n")
	for _, t := range tasks {
		fmt.Fprintf(out, "- Number: %s, Title: %s, Type: %s, Scope: %s, Institute: %s, Trial stage: %s, Department: %s\n",
			t.Number, t.Title, t.Type, t.Scope, t.Institute, t.TrialStage, t.Department)
	}
}

func loadConfig(cmd *cobra.Command) config.Config {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		log.GetLogger().Errorf("Failed to load configuration: %v", err)
		os.Exit(1)
	}
	log.SetLevel(cfg.LogLevel)
	return cfg
}

func newService(cmd *cobra.Command) (*service.TaskService, *internal_storage.PostgresStore) {
	store := initStore(cmd, loadConfig(cmd))
	return service.NewTaskService(store, log.GetLogger()), store
}

func initStore(cmd *cobra.Command, cfg config.Config) *internal_storage.PostgresStore {
	dbConnStr, err := cmd.Flags().GetString("db")
	if err != nil {
		log.GetLogger().Errorf("Error retrieving db flag: %v", err)
		os.Exit(1)
	}
	if dbConnStr == "" {
		dbConnStr, err = cfg.DB.ConnString()
		if err != nil {
			log.GetLogger().Errorf("No database configured: %v", err)
			os.Exit(1)
		}
	}
	store, err := internal_storage.InitStore(dbConnStr, internal_storage.PoolOptions{
		MaxOpenConns:    cfg.DB.MaxOpenConns,
		MaxIdleConns:    cfg.DB.MaxIdleConns,
		ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
	})
	if err != nil {
		log.GetLogger().Errorf("Failed to initialize store: %v", err)
		os.Exit(1)
	}
	return store
}
