package main

import (
	"context"
	"fmt"
	"net/mail"

	"github.com/Sibo-Zhao/UKFT-PAI-Group3/core/user"
)

// sendAlerts emails the early warning digest to every active wellbeing officer.
func (cli *commandLine) sendAlerts() error {
	ctx := context.Background()

	active := true
	officers, err := cli.usrRepo.QueryUsers(ctx, &user.QueryFilter{
		Roles:    []string{user.RoleWellbeing},
		IsActive: &active,
	}, nil)
	if err != nil {
		return err
	}
	if len(officers) == 0 {
		fmt.Println("no active wellbeing officers found; nothing sent")
		return nil
	}

	to := make([]mail.Address, 0, len(officers))
	for _, officer := range officers {
		to = append(to, mail.Address{Name: officer.Name, Address: officer.Email})
	}

	ew, err := cli.reportSvc.EmailEarlyWarningDigest(ctx, to)
	if err != nil {
		return err
	}
	fmt.Printf(
		"digest sent to %d officer(s): %d high stress, %d low sleep\n",
		len(to), ew.HighStressStudents.Count, ew.LowSleepStudents.Count,
	)
	return nil
}
