package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"planmate/internal/analytics"
	"planmate/internal/config"
	"planmate/internal/database"
	"planmate/internal/models"
	"planmate/internal/utils"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run cmd/analyze/main.go <tasks.json|-> [asOfDate] [timezone]")
		fmt.Println("       go run cmd/analyze/main.go -user <userID> [asOfDate] [timezone]")
		fmt.Println("Example: go run cmd/analyze/main.go tasks.json 2025-01-15 Europe/Paris")
		os.Exit(1)
	}

	args := os.Args[1:]
	userID := ""
	if args[0] == "-user" {
		if len(args) < 2 {
			log.Fatalf("-user requires a user ID")
		}
		userID = args[1]
		args = args[2:]
	} else {
		args = args[1:]
	}

	loc := time.Local
	if len(args) > 1 {
		var err error
		loc, err = time.LoadLocation(args[1])
		if err != nil {
			log.Fatalf("Invalid timezone: %v", err)
		}
	}

	now := time.Now().In(loc)
	if len(args) > 0 {
		date, err := utils.ParseDateIn(args[0], loc)
		if err != nil {
			log.Fatalf("Invalid as-of date: %v", err)
		}
		// End of that day, so completions made during it count
		now = date.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}

	engine := analytics.NewEngine(analytics.WithLocation(loc))

	var tasks []models.Task
	var err error
	if userID != "" {
		tasks, err = loadUserTasks(userID)
	} else {
		tasks, err = loadTaskFile(os.Args[1], loc)
	}
	if err != nil {
		log.Fatalf("Failed to load tasks: %v", err)
	}

	printSummary(engine.Summarize(analytics.AsOf(tasks, now), now), loc)
}

func loadTaskFile(path string, loc *time.Location) ([]models.Task, error) {
	var raw []byte
	var err error
	if path == "-" {
		raw, err = io.ReadAll(os.Stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}
	return analytics.DecodeTasks(raw, loc)
}

func loadUserTasks(userID string) ([]models.Task, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if !cfg.MongoDB.Enabled() {
		return nil, fmt.Errorf("MongoDB is not configured (set MONGODB_URI or MONGODB_USERNAME)")
	}

	client, err := database.NewMongoDBClient(cfg.MongoDB)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return client.FindTasksByUser(ctx, userID)
}

func printSummary(summary analytics.Summary, loc *time.Location) {
	fmt.Printf("=== Task Analytics ===\n\n")
	fmt.Printf("As of: %s\n", summary.GeneratedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Timezone: %s\n\n", loc)

	counts := summary.Counts
	fmt.Println("=== Counts ===")
	fmt.Printf("Total: %d, Completed: %d, Pending: %d (%d%%)\n", counts.Total, counts.Completed, counts.Pending, counts.CompletionRate)
	fmt.Printf("High priority: %d of %d completed\n\n", counts.HighPriorityCompleted, counts.HighPriority)

	weekly := summary.Weekly
	fmt.Printf("=== Week of %s ===\n", utils.FormatDate(weekly.WeekStart))
	for i, label := range weekly.Labels {
		fmt.Printf("  %-7s %d\n", label, weekly.Days[i])
	}
	fmt.Printf("Completed %d of %d (%d%%)\n\n", weekly.Completed, weekly.Total, weekly.CompletionRate)

	fmt.Println("=== Priorities ===")
	for _, p := range []models.Priority{models.PriorityHigh, models.PriorityMedium, models.PriorityLow} {
		bucket := summary.Priorities.For(p)
		fmt.Printf("  %-6s %d of %d completed\n", p, bucket.Completed, bucket.Total)
	}
	fmt.Println()

	insights := summary.Insights
	fmt.Println("=== Insights ===")
	fmt.Printf("Most productive time: %s (%d)\n", insights.MostProductiveTime.Period, insights.MostProductiveTime.Count)
	fmt.Printf("Best day: %s (%d)\n", insights.BestDay.Name, insights.BestDay.Count)
	fmt.Printf("Average time per task: %s\n\n", insights.AvgTimePerTask)

	fmt.Println("=== Recently Completed ===")
	if len(summary.RecentCompleted) == 0 {
		fmt.Println("  (none)")
	}
	for i, task := range summary.RecentCompleted {
		when := "unknown"
		if task.CompletedAt != nil {
			when = task.CompletedAt.In(loc).Format(time.RFC3339)
		}
		fmt.Printf("  [%d] %s (%s) at %s\n", i+1, task.Title, task.Priority, when)
	}
}
