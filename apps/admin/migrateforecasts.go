package main

import (
	"context"
	"fmt"
)

func (cli *commandLine) migrateForecasts() error {
	migrated, err := cli.db.MigrateLegacyForecasts(context.Background())
	if err != nil {
		return err
	}
	fmt.Printf("migrated %d forecast months\n", migrated)
	return nil
}
