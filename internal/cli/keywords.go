package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"phrasebook/internal/model"
	"phrasebook/internal/query"
	"phrasebook/internal/service"
)

const (
	ErrCodeInvalid  = "E_INVALID"
	ErrCodeNotFound = "E_NOT_FOUND"
)

type keywordView struct {
	ID        string `json:"id"`
	RemoteID  *int64 `json:"remote_id,omitempty"`
	Native    string `json:"native"`
	Target    string `json:"target"`
	Situation string `json:"situation"`
	CreatedAt string `json:"created_at"`
}

func toKeywordView(kw model.Keyword) keywordView {
	return keywordView{
		ID:        kw.ID,
		RemoteID:  kw.RemoteID,
		Native:    kw.NativeText,
		Target:    kw.TargetText,
		Situation: string(kw.Situation),
		CreatedAt: kw.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func writeKeywordTable(w io.Writer, keywords []model.Keyword) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSITUATION\tNATIVE\tTARGET")
	for _, kw := range keywords {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", kw.ID, kw.Situation, kw.NativeText, kw.TargetText)
	}
	_ = tw.Flush()
}

func (o *RootOptions) fail(cmd *cobra.Command, exitCode int, code string, err error) error {
	_ = o.formatter(cmd).Error(code, err.Error())
	return &ExitError{Code: exitCode, Message: code, Err: err, Reported: true}
}

func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	var situation string

	cmd := &cobra.Command{
		Use:   "add <native> <target>",
		Short: "Add a phrase pair",
		Long: `Add a phrase pair to the collection.

The situation may be a slug (daily-conversation, business, travel, shopping,
dining, medical, school, hobby) or one of the legacy Korean labels.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt := openRuntime(cmd.Context(), rootOpts.cfg)
			defer rt.Close()
			rt.service.Load(cmd.Context())

			kw, err := rt.service.Add(cmd.Context(), args[0], args[1], situation)
			if err != nil {
				if errors.Is(err, service.ErrInvalid) {
					return rootOpts.fail(cmd, ExitCommandError, ErrCodeInvalid, err)
				}
				return err
			}

			// report the remote id when the insert made it
			rt.service.Wait()
			if promoted, err := rt.service.Get(kw.ID); err == nil {
				kw = promoted
			}

			return rootOpts.formatter(cmd).Success(toKeywordView(kw), func(w io.Writer) {
				fmt.Fprintf(w, "Added %s [%s] %s = %s\n", kw.ID, kw.Situation, kw.NativeText, kw.TargetText)
				if !kw.HasRemoteID() && rt.service.RemoteEnabled() {
					fmt.Fprintln(w, "warning: saved locally only, the remote store did not accept it")
				}
			})
		},
	}

	cmd.Flags().StringVarP(&situation, "situation", "s", string(model.SituationDaily), "situation tag")
	return cmd
}

func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	var situation string

	cmd := &cobra.Command{
		Use:     "list [text]",
		Aliases: []string{"search"},
		Short:   "List or search phrase pairs, newest first",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt := openRuntime(cmd.Context(), rootOpts.cfg)
			defer rt.Close()
			rt.service.Load(cmd.Context())

			params := query.Params{Situation: situation}
			if len(args) == 1 {
				params.Text = args[0]
			}
			keywords := rt.service.Search(params)

			views := make([]keywordView, 0, len(keywords))
			for _, kw := range keywords {
				views = append(views, toKeywordView(kw))
			}
			return rootOpts.formatter(cmd).Success(views, func(w io.Writer) {
				if len(keywords) == 0 {
					fmt.Fprintln(w, "No keywords found.")
					return
				}
				writeKeywordTable(w, keywords)
			})
		},
	}

	cmd.Flags().StringVarP(&situation, "situation", "s", model.SituationAll, "situation filter")
	return cmd
}

type deleteView struct {
	Deleted     bool   `json:"deleted"`
	ID          string `json:"id"`
	RemoteError string `json:"remote_error,omitempty"`
}

func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a phrase pair from the cache and the remote store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt := openRuntime(cmd.Context(), rootOpts.cfg)
			defer rt.Close()
			rt.service.Load(cmd.Context())

			result, err := rt.service.Delete(cmd.Context(), args[0])
			if err != nil {
				if errors.Is(err, service.ErrInvalid) {
					return rootOpts.fail(cmd, ExitCommandError, ErrCodeInvalid, err)
				}
				return err
			}

			view := deleteView{Deleted: result.Deleted, ID: strings.TrimSpace(args[0])}
			if result.RemoteErr != nil {
				view.RemoteError = result.RemoteErr.Error()
			}
			return rootOpts.formatter(cmd).Success(view, func(w io.Writer) {
				if !result.Deleted {
					fmt.Fprintf(w, "Nothing to delete for %s\n", view.ID)
					return
				}
				fmt.Fprintf(w, "Deleted %s\n", result.Keyword.ID)
				if view.RemoteError != "" {
					fmt.Fprintf(w, "warning: remote copy may remain: %s\n", view.RemoteError)
				}
			})
		},
	}
	return cmd
}

type loadView struct {
	Source      string `json:"source"`
	Count       int    `json:"count"`
	Skipped     int    `json:"skipped"`
	RemoteError string `json:"remote_error,omitempty"`
	CacheError  string `json:"cache_error,omitempty"`
}

func NewRefreshCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Reload the collection from the remote store and rewrite the cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt := openRuntime(cmd.Context(), rootOpts.cfg)
			defer rt.Close()

			result := rt.service.Refresh(cmd.Context())
			view := loadView{Source: string(result.Source), Count: result.Count, Skipped: result.Skipped}
			if result.RemoteErr != nil {
				view.RemoteError = result.RemoteErr.Error()
			}
			if result.CacheErr != nil {
				view.CacheError = result.CacheErr.Error()
			}
			return rootOpts.formatter(cmd).Success(view, func(w io.Writer) {
				fmt.Fprintf(w, "Loaded %d keywords from %s", view.Count, view.Source)
				if view.Skipped > 0 {
					fmt.Fprintf(w, " (%d skipped)", view.Skipped)
				}
				fmt.Fprintln(w)
				if view.RemoteError != "" {
					fmt.Fprintf(w, "warning: remote: %s\n", view.RemoteError)
				}
				if view.CacheError != "" {
					fmt.Fprintf(w, "warning: cache: %s\n", view.CacheError)
				}
			})
		},
	}
	return cmd
}

type statsView struct {
	Total       int            `json:"total"`
	BySituation map[string]int `json:"by_situation"`
	Situations  []string       `json:"situations"`
}

func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show collection counts per situation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt := openRuntime(cmd.Context(), rootOpts.cfg)
			defer rt.Close()
			rt.service.Load(cmd.Context())

			stats := rt.service.Stats()
			present := rt.service.Situations()
			view := statsView{
				Total:       stats.Total,
				BySituation: make(map[string]int, len(stats.BySituation)),
				Situations:  make([]string, 0, len(present)),
			}
			for _, s := range present {
				view.BySituation[string(s)] = stats.BySituation[s]
				view.Situations = append(view.Situations, string(s))
			}
			return rootOpts.formatter(cmd).Success(view, func(w io.Writer) {
				fmt.Fprintf(w, "Total: %d\n", view.Total)
				for _, s := range view.Situations {
					fmt.Fprintf(w, "  %-20s %d\n", s, view.BySituation[s])
				}
			})
		},
	}
	return cmd
}
