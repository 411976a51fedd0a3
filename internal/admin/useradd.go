// Package admin holds the interactive operator commands shipped next to the
// server, such as creating the first account.
package admin

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/dmitrijs2005/stockroom/internal/common"
	"github.com/dmitrijs2005/stockroom/internal/server/models"
)

// UserCreator is implemented by services.AuthService.
type UserCreator interface {
	CreateUser(ctx context.Context, userName, email, displayName, password string, roles []string) (*models.User, error)
}

// UserAdd prompts for the account details on reader and w, asks for the
// password twice and creates the user.
func UserAdd(ctx context.Context, users UserCreator, reader *bufio.Reader, w io.Writer) (*models.User, error) {
	userName, err := GetSimpleText(reader, "User name", w)
	if err != nil {
		return nil, err
	}
	if userName == "" {
		return nil, common.Validation("user name is required")
	}

	email, err := GetSimpleText(reader, "Email", w)
	if err != nil {
		return nil, err
	}
	displayName, err := GetSimpleText(reader, "Display name", w)
	if err != nil {
		return nil, err
	}
	rawRoles, err := GetSimpleText(reader, "Roles (comma separated, may be empty)", w)
	if err != nil {
		return nil, err
	}

	password, err := GetPassword("Password", w)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(password)

	confirm, err := GetPassword("Repeat password", w)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(confirm)

	if !bytes.Equal(password, confirm) {
		return nil, common.Validation("passwords do not match")
	}

	u, err := users.CreateUser(ctx, userName, email, displayName, string(password), models.SplitRoles(rawRoles))
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(w, "User %s created with id %s\n", u.UserName, u.ID)
	return u, nil
}
