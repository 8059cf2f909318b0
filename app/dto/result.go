package dto

import "github.com/vibast-solutions/ms-go-sleep/app/entity"

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

type BootstrapResult struct {
	User    *entity.User
	Tokens  TokenPair
	Created bool
}
