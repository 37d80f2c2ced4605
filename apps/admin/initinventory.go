package main

import (
	"context"
	"fmt"
)

func (cli *commandLine) initInventory(uname string) error {
	count, seeded, err := cli.invSvc.Initialize(context.Background(), uname)
	if err != nil {
		return err
	}
	if seeded {
		fmt.Printf("seeded %d inventory items\n", count)
	} else {
		fmt.Printf("inventory already has %d items, nothing to do\n", count)
	}
	return nil
}
