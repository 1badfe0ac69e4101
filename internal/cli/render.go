package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/okian/runboard/internal/domain/model"
	"github.com/okian/runboard/internal/domain/types"
)

// medals stand in for trophy images on a terminal.
var medals = map[int]string{1: "🥇", 2: "🥈", 3: "🥉"}

// RenderSnapshot prints one leaderboard page.
func RenderSnapshot(w io.Writer, s types.Snapshot) error { //nolint:gocritic // hugeParam: snapshot is read once
	switch {
	case s.Error != "":
		_, err := fmt.Fprintf(w, "error: %s\n", s.Error)
		return err
	case s.NoCategories:
		_, err := fmt.Fprintln(w, "No categories available")
		return err
	}

	if len(s.Categories) > 0 {
		fmt.Fprint(w, "categories:")
		for _, c := range s.Categories {
			marker := ""
			if c.ID == s.ActiveCategoryID {
				marker = "*"
			}
			fmt.Fprintf(w, " %s%s", marker, c.Name)
		}
		fmt.Fprintln(w)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tPLAYER\tTIME\tVIDEO")
	for _, r := range s.Rows {
		rank := fmt.Sprint(r.Rank)
		if m, ok := medals[r.Rank]; ok && r.Trophy != "" {
			rank = m
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", rank, r.Player, r.Time, r.Video)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flush table: %w", err)
	}
	_, err := fmt.Fprintf(w, "page %d, %d runs\n", s.Page+1, s.Total)
	return err
}

// RenderGames prints catalog cards.
func RenderGames(w io.Writer, title string, games []types.GameCard, errMsg string) error {
	fmt.Fprintf(w, "%s\n", title)
	if errMsg != "" {
		_, err := fmt.Fprintf(w, "error: %s\n", errMsg)
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tYEAR\tRUNS")
	for _, g := range games {
		runs := ""
		if g.RunCount > 0 {
			runs = fmt.Sprint(g.RunCount)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", g.ID, g.Name, g.ReleaseYear, runs)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flush table: %w", err)
	}
	return nil
}

// RenderEvents prints dispatched events.
func RenderEvents(w io.Writer, events []model.Event) error {
	for _, e := range events {
		detail := e.URL + e.Term
		if e.Kind == model.EventVideoRequested {
			detail = "closed"
			if e.EmbedURL != nil {
				detail = *e.EmbedURL
			}
		}
		if _, err := fmt.Fprintf(w, "event %s %s %s\n", e.ID, e.Kind, detail); err != nil {
			return err
		}
	}
	return nil
}
