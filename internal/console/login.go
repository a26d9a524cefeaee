// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache-2.0

package console

import (
	"strings"
	"time"

	"github.com/open-edge-platform/messaging-console-tests/internal/browser"
	"github.com/open-edge-platform/messaging-console-tests/internal/model"
)

const (
	selLoginUsername = "#inputUsername, #username"
	selLoginPassword = "#inputPassword, #password"
	selLoginSubmit   = "button[type='submit'], input[type='submit']"
	selLoginAlert    = ".pf-c-alert__title, .alert-error, #kc-error-message"
)

// LoginWebPage is the identity provider form the console redirects to
type LoginWebPage struct {
	provider *browser.Provider
}

func NewLoginWebPage(provider *browser.Provider) *LoginWebPage {
	return &LoginWebPage{provider: provider}
}

// IsLoginPage reports whether the current page is a login form
func (l *LoginWebPage) IsLoginPage() bool {
	title, err := l.provider.Title()
	return err == nil && strings.Contains(title, "Log")
}

// Login submits the credentials and reports whether the provider accepted them
func (l *LoginWebPage) Login(creds model.UserCredentials) (bool, error) {
	log.Infof("Trying to login with credentials %s", creds)
	page := l.provider.Page()
	if err := l.provider.FillInputItem(page.Locator(selLoginUsername), creds.Username); err != nil {
		return false, err
	}
	if err := l.provider.FillInputItem(page.Locator(selLoginPassword), creds.Password); err != nil {
		return false, err
	}
	if err := l.provider.ClickOnItem(page.Locator(selLoginSubmit), "Log in"); err != nil {
		return false, err
	}
	err := browser.WaitUntilCondition(l.provider.Context(), l.provider.Options().DefaultTimeout, 500*time.Millisecond, func() (bool, error) {
		return l.hasAlert() || !l.IsLoginPage(), nil
	})
	if l.hasAlert() {
		log.Warnf("Login failed: %s", l.AlertMessage())
		return false, nil
	}
	if err != nil {
		return false, err
	}
	log.Infof("User %s logged in", creds.Username)
	return true, nil
}

func (l *LoginWebPage) hasAlert() bool {
	return l.provider.IsVisible(l.provider.Page().Locator(selLoginAlert))
}

// AlertMessage is the error shown by the login form, empty when there is none
func (l *LoginWebPage) AlertMessage() string {
	if !l.hasAlert() {
		return ""
	}
	text, err := l.provider.Page().Locator(selLoginAlert).First().InnerText()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(text)
}
