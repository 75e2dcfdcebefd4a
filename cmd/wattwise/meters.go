// Copyright 2025 Matthew Gall <me@matthewgall.dev>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var metersCmd = &cobra.Command{
	Use:   "meters",
	Short: "List the metering points on the account",
	Long: `Queries Eloverblik for the metering points the refresh token can see.
Use the IDs here for the metering_points config entry or the --meter
flag of the analysis commands.`,
	RunE: runMeters,
}

func init() {
	rootCmd.AddCommand(metersCmd)
}

func runMeters(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Debug)

	client, err := newEloverblikClient(cfg, logger)
	if err != nil {
		return err
	}

	points, err := client.ListMeteringPoints(context.Background())
	if err != nil {
		return fmt.Errorf("listing metering points: %w", err)
	}
	if len(points) == 0 {
		fmt.Println("The account has no metering points")
		return nil
	}

	fmt.Printf("%-20s %-6s %-24s %s\n", "METERING POINT", "TYPE", "SUPPLIER", "ADDRESS")
	for _, p := range points {
		address := strings.TrimSpace(fmt.Sprintf("%s %s, %s %s",
			p.StreetName, p.BuildingNumber, p.Postcode, p.CityName))
		address = strings.TrimPrefix(address, ", ")
		fmt.Printf("%-20s %-6s %-24s %s\n", p.MeteringPointID, p.TypeOfMP, p.BalanceSupplier, address)
	}
	return nil
}
