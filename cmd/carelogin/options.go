package main

import "github.com/ericfisherdev/carepanel/internal/domain/model"

// Options are the carelogin command-line flags.
type Options struct {
	Username string `short:"u" long:"username" env:"CAREPANEL_USERNAME" description:"account username"`
	Password string `short:"p" long:"password" env:"CAREPANEL_PASSWORD" description:"account password"`
	Register bool   `short:"r" long:"register" description:"create the account before logging in"`
	Role     string `long:"role" default:"patient" choice:"patient" choice:"doctor" choice:"admin" description:"role for a new account"`
}

func (o *Options) role() model.UserRole {
	return model.UserRole(o.Role)
}
