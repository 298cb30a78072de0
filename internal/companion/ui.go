package companion

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/wispapp/wisp/internal/achievement"
	"github.com/wispapp/wisp/internal/challenge"
	"github.com/wispapp/wisp/internal/styles"
)

var stageIcons = map[Stage]string{
	StageEgg:       "🥚",
	StageHatchling: "🐣",
	StageSprite:    "🧚",
	StageGuardian:  "🛡️",
	StageElder:     "🌳",
}

// RenderDashboard draws the companion status screen.
func (m *Manager) RenderDashboard() string {
	var sb strings.Builder

	stage := m.EvolutionStage()
	sb.WriteString(styles.HEADER(fmt.Sprintf("%s  WISP · %s\n", stageIcons[stage], strings.ToUpper(stage.String()))))
	sb.WriteString(styles.MUTED(strings.Repeat("─", 60)) + "\n")

	streakState := m.streaks.Snapshot()
	sb.WriteString(styles.SECTION("Streak\n"))
	sb.WriteString(styles.BODY(fmt.Sprintf("  Current: %d days   Longest: %d days\n",
		streakState.Current, streakState.Longest)))
	if next := m.streaks.NextMilestone(); next > 0 {
		sb.WriteString(styles.MUTED(fmt.Sprintf("  %d days until the %d-day milestone\n",
			m.streaks.DaysUntilMilestone(), next)))
	}
	sb.WriteString("\n")

	stats := m.achievements.Statistics()
	sb.WriteString(styles.SECTION("Achievements\n"))
	sb.WriteString(styles.BODY(fmt.Sprintf("  %d / %d earned (%.0f%%)   Bonus points: %s\n",
		stats.TotalEarned, stats.TotalAvailable, stats.CompletionPercentage,
		humanize.Comma(int64(stats.BonusPoints)))))
	if stats.RarestBadge != nil {
		sb.WriteString(styles.SUCCESS(fmt.Sprintf("  Rarest: %s %s (%s)\n",
			stats.RarestBadge.Icon, stats.RarestBadge.Name, stats.RarestBadge.Rarity)))
	}
	sb.WriteString("\n")

	sb.WriteString(styles.SECTION(fmt.Sprintf("Weekly challenges (reset %s)\n",
		humanize.Time(time.Now().Add(challenge.TimeRemaining(time.Now()))))))
	active := m.challenges.Active()
	if len(active) == 0 {
		sb.WriteString(styles.MUTED("  None generated yet\n"))
	}
	for _, c := range active {
		bar := progressBar(c.Progress, c.Target, 20)
		line := fmt.Sprintf("  %s %-20s %s %s/%s %s\n",
			c.Icon, c.Name, bar,
			humanize.Comma(int64(c.Progress)), humanize.Comma(int64(c.Target)), c.Unit)
		if c.Completed {
			sb.WriteString(styles.SUCCESS(line))
		} else {
			sb.WriteString(styles.BODY(line))
		}
	}
	sb.WriteString("\n")

	sb.WriteString(styles.SECTION("Cosmetics\n"))
	sb.WriteString(styles.BODY(fmt.Sprintf("  Owned: %d", m.inventory.Count())))
	if layers := m.inventory.Layers(); len(layers) > 0 {
		names := make([]string, 0, len(layers))
		for _, c := range layers {
			names = append(names, c.Name)
		}
		sb.WriteString(styles.MUTED("   Equipped: " + strings.Join(names, ", ")))
	}
	sb.WriteString("\n")

	if pending := m.queue.Pending(); pending > 0 {
		sb.WriteString(styles.WARNING(fmt.Sprintf("\n🔔 %d pending notifications\n", pending)))
	}
	return sb.String()
}

// RenderAchievements draws the filtered achievement list.
func (m *Manager) RenderAchievements(filter achievement.Filter) (string, error) {
	achievements, err := m.achievements.List(filter)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(styles.HEADER("ACHIEVEMENTS\n"))

	for _, a := range achievements {
		if a.Earned() {
			sb.WriteString(styles.SUCCESS(fmt.Sprintf("  %s %-20s %s\n",
				a.Icon, a.Name, humanize.Time(*a.UnlockedAt))))
		} else {
			sb.WriteString(styles.MUTED(fmt.Sprintf("  🔒 %-20s %s\n", a.Name, a.Description)))
		}
	}
	return sb.String(), nil
}

// RenderNotifications drains and formats pending reward events.
func (m *Manager) RenderNotifications() string {
	events := m.queue.Drain()
	if len(events) == 0 {
		return styles.MUTED("No pending notifications\n")
	}

	var sb strings.Builder
	for _, ev := range events {
		sb.WriteString(styles.SUCCESS(fmt.Sprintf("%s\n", ev.Title)))
		sb.WriteString(styles.BODY(fmt.Sprintf("  %s\n", ev.Body)))
	}
	return sb.String()
}

func progressBar(current, target, width int) string {
	if target <= 0 {
		target = 1
	}
	filled := current * width / target
	if filled > width {
		filled = width
	}
	return styles.PROGRESS("[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + "]")
}
