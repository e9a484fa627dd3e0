package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/interlux/shopchat/pkg/channels"
	"github.com/interlux/shopchat/pkg/logger"
	"github.com/interlux/shopchat/pkg/orders"
	"github.com/interlux/shopchat/pkg/session"
	"github.com/interlux/shopchat/pkg/terminal"
	"github.com/interlux/shopchat/pkg/transport"
	"github.com/interlux/shopchat/pkg/widget"
)

func serveCmd() *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the browser widget",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Widget.Port = port
			}

			ch, err := channels.NewWidgetChannel(cfg.Widget, newClient(cfg))
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := ch.Start(ctx); err != nil {
				return fmt.Errorf("starting widget server: %w", err)
			}
			<-ctx.Done()

			logger.InfoC("main", "Shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return ch.Stop(shutdownCtx)
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides config)")
	return cmd
}

func chatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Chat with the shop assistant in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
			defer stop()

			store, release, err := openStore(ctx, cfg)
			if err != nil {
				return fmt.Errorf("opening session store: %w", err)
			}
			defer release()

			client := newClient(cfg)
			out := cmd.OutOrStdout()
			view := terminal.NewConsoleView(out)
			ctrl := widget.New(session.New(store), client, orders.NewLoader(client), view)
			if err := ctrl.Init(ctx); err != nil {
				return err
			}

			return terminal.Run(ctx, ctrl, view, os.Stdin, out, terminal.Options{
				Prompt:      cfg.Terminal.Prompt,
				HistoryFile: cfg.TerminalHistoryFile(),
			})
		},
	}
}

func ordersCmd() *cobra.Command {
	var userID string
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "List the orders of the stored (or given) user",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			if userID == "" {
				store, release, err := openStore(ctx, cfg)
				if err != nil {
					return fmt.Errorf("opening session store: %w", err)
				}
				defer release()
				if userID, err = session.New(store).Restore(ctx); err != nil {
					return err
				}
			}
			if userID == "" {
				return fmt.Errorf("no user id stored yet; chat first or pass --user")
			}

			list, err := newClient(cfg).FetchOrders(ctx, userID)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No orders.")
				return nil
			}
			return orders.WriteTable(cmd.OutOrStdout(), list)
		},
	}
	cmd.Flags().StringVarP(&userID, "user", "u", "", "user id (defaults to the stored one)")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "shopchat %s\n", transport.Version)
		},
	}
}
