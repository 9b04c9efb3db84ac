package main

import (
	"time"

	"github.com/google/uuid"

	"github.com/phamthikhanhhuyen281-commits/webthigiaoduc/core"
	"github.com/phamthikhanhhuyen281-commits/webthigiaoduc/core/user"
)

// addUser updates or creates a user.User. This is the only way to provision
// an owner account; owners cannot self-register.
func (cli *commandLine) addUser(name, email, role, pwd string) error {
	name = core.CleanString(name)
	email = core.CleanString(email, true /* lower */)

	usr, err := cli.usrRepo.GetUserByEmail(email)
	if err != nil {
		if err != user.ErrNotFound {
			return err
		}
		now := time.Now().UTC()
		usr = user.User{
			ID:        uuid.NewString(),
			Name:      name,
			Nickname:  name,
			Email:     email,
			Avatar:    user.DefaultAvatar(name),
			Plan:      user.PlanFree,
			CreatedAt: now,
		}
		usr.Role = role
		usr.UpdatedAt = now
		if err := usr.SetPassword(pwd); err != nil {
			return err
		}
		_, err = cli.usrRepo.CreateUser(usr)
		return err
	}

	usr.Name = name
	usr.Role = role
	usr.UpdatedAt = time.Now().UTC()
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	_, err = cli.usrRepo.UpdateUser(usr)
	return err
}
