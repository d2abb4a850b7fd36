package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/escala/rotation-engine/holidays"
)

var holidaysYear int

var holidaysCmd = &cobra.Command{
	Use:   "holidays",
	Short: "Print the Brazilian national holiday catalog for a year",
	RunE:  printHolidays,
}

func init() {
	holidaysCmd.Flags().IntVar(&holidaysYear, "year", time.Now().Year(), "calendar year")
	rootCmd.AddCommand(holidaysCmd)
}

func printHolidays(cmd *cobra.Command, args []string) error {
	if holidaysYear < 1 {
		return fmt.Errorf("invalid year %d", holidaysYear)
	}
	for _, h := range holidays.Brazilian(holidaysYear) {
		fmt.Printf("%s  %s\n", h.Date, h.Name)
	}
	return nil
}
