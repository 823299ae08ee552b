// SAGE - Secure Agent Guarantee Engine
// Copyright (C) 2025 SAGE-X-project
//
// This file is part of SAGE.
//
// SAGE is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// SAGE is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with SAGE. If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/sage-x-project/sas-verify/config"
	"github.com/sage-x-project/sas-verify/internal/metrics"
	"github.com/sage-x-project/sas-verify/internal/verifylog"
	"github.com/sage-x-project/sas-verify/sasstate"
	"github.com/sage-x-project/sas-verify/store"
	"github.com/sage-x-project/sas-verify/store/memory"
	"github.com/sage-x-project/sas-verify/store/postgres"
	"github.com/sage-x-project/sas-verify/store/sealedstore"
	"github.com/sage-x-project/sas-verify/transport/todevice"
)

var (
	serveUserID   string
	serveDeviceID string
	configPath    string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the to-device verification transport and Prometheus metrics",
	Long: `serve starts a WebSocket to-device server that dispatches inbound
m.key.verification.* events to sasstate.Flow instances, checkpointing them
in the configured store, and exposes the service's Prometheus metrics on a
second listener.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveUserID, "user", "@local:example.org", "local user id")
	serveCmd.Flags().StringVar(&serveDeviceID, "device", "LOCALDEVICE", "local device id")
	serveCmd.Flags().StringVar(&configPath, "config", "", "path to config file (optional)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadServeConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	st, err := openStore(cfg.Store)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	account, err := localAccount(serveUserID, serveDeviceID)
	if err != nil {
		return fmt.Errorf("build local account: %w", err)
	}

	logger := verifylog.GetDefaultLogger()
	identity := store.NewDeviceIdentityLookup(st.DeviceStore())

	router := todevice.NewRouter(todevice.RouterConfig{
		Account:  account,
		Identity: identity,
		Flows:    st.FlowStore(),
		Dedupe:   st.DedupeStore(),
		Clients: func(peerUserID, peerDeviceID string) (*todevice.Client, error) {
			return nil, fmt.Errorf("no to-device client configured for %s/%s: this demo server only receives", peerUserID, peerDeviceID)
		},
		Logger: logger,
	})

	server := todevice.NewServer(router.Handle)
	server.SetLogger(logger)

	mux := http.NewServeMux()
	mux.Handle("/todevice", server.Handler())

	logger.Info("sasverify serve starting",
		verifylog.String("listen_addr", cfg.Transport.ListenAddr),
		verifylog.String("metrics_addr", cfg.Metrics.Addr),
		verifylog.String("store_driver", cfg.Store.Driver),
	)

	errCh := make(chan error, 2)
	go func() {
		errCh <- http.ListenAndServe(cfg.Transport.ListenAddr, mux)
	}()
	if cfg.Metrics.Enabled {
		go func() {
			errCh <- metrics.StartServer(cfg.Metrics.Addr)
		}()
	}

	return <-errCh
}

func loadServeConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromFile(configPath)
	}
	return config.Load()
}

func openStore(cfg *config.StoreConfig) (store.Store, error) {
	switch cfg.Driver {
	case "", "memory":
		return memory.NewStore(), nil
	case "sealed":
		key := []byte(os.Getenv(cfg.SealKeyEnv))
		if len(key) == 0 {
			return nil, fmt.Errorf("sealed store requires %s to be set", cfg.SealKeyEnv)
		}
		return sealedstore.NewStore(key, sasstate.MaxAge)
	case "postgres":
		return postgres.NewStoreFromDSN(context.Background(), cfg.DSN)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

func localAccount(userID, deviceID string) (sasstate.Account, error) {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return sasstate.Account{}, err
	}
	return sasstate.Account{UserID: userID, DeviceID: deviceID, SigningKey: pub}, nil
}
