// Copyright 2025 The Rivaas Authors
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

package jwtauth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"rivaas.dev/jsonrest"
	"rivaas.dev/jsonrest/apierror"
	"rivaas.dev/jsonrest/version"
)

// Deps wires the collaborators of the ready-made auth endpoints.
type Deps struct {
	Signer    *Signer
	Consumers ConsumerStore
	Tokens    TokenStore
	Users     UserStore
}

// Routes returns the token-issuing and introspection endpoints, all at
// version 0.0 with the FollowingMajorMinor policy:
//
//	POST auth/consumer  public          exchange uid+key for a consumer token
//	GET  auth/consumer  consumer token  echo the authenticated consumer
//	POST auth/user      consumer token  exchange username+password for user tokens
//	GET  auth/user      user token      echo the authenticated user
//
// Register them with Registry.Add alongside the application's own routes.
func Routes(deps Deps) []*jsonrest.Route {
	v0 := version.MustNew(0, 0, version.FollowingMajorMinor)
	consumerAuth := ConsumerToken(deps.Signer, deps.Tokens, deps.Consumers)

	return []*jsonrest.Route{
		jsonrest.POST("auth/consumer", v0, deps.consumerLogin,
			jsonrest.WithRouteName("auth_consumer_login"),
			jsonrest.WithTolerated(apierror.KindRequest, apierror.KindAuthentication),
		),
		jsonrest.GET("auth/consumer", v0, consumerEcho,
			jsonrest.WithRouteAuth(consumerAuth),
			jsonrest.WithRouteName("auth_consumer_echo"),
		),
		jsonrest.POST("auth/user", v0, deps.userLogin,
			jsonrest.WithRouteAuth(consumerAuth),
			jsonrest.WithRouteName("auth_user_login"),
			jsonrest.WithTolerated(apierror.KindRequest, apierror.KindAuthentication),
		),
		jsonrest.GET("auth/user", v0, userEcho,
			jsonrest.WithRouteAuth(User(deps.Signer, deps.Tokens, deps.Users)),
			jsonrest.WithRouteName("auth_user_echo"),
		),
	}
}

// issuedToken is the wire shape of one issued token.
type issuedToken struct {
	Token  string        `json:"token"`
	Claims jwt.MapClaims `json:"claims"`
}

// issue mints, persists, and signs one token.
func (d Deps) issue(c *jsonrest.Context, subject, audience string) (*issuedToken, error) {
	ttl := d.Signer.Settings().DefaultTokenTTL
	switch audience {
	case AudienceConsumer:
		ttl = d.Signer.Settings().ConsumerTokenTTL
	case AudienceUserStrong:
		ttl = d.Signer.Settings().UserStrongTokenTTL
	case AudienceUserWeak:
		ttl = d.Signer.Settings().UserWeakTokenTTL
	}

	token, err := NewToken(subject, audience, ttl)
	if err != nil {
		return nil, err
	}
	if err := d.Tokens.Save(c.RequestContext(), token); err != nil {
		return nil, apierror.Wrap(err, apierror.KindConfiguration, "token store rejected the token")
	}

	signed, claims, err := d.Signer.Sign(token)
	if err != nil {
		return nil, err
	}
	return &issuedToken{Token: signed, Claims: claims}, nil
}

// consumerLogin exchanges a consumer's uid and key for a consumer token.
func (d Deps) consumerLogin(c *jsonrest.Context) (any, error) {
	var in struct {
		UID string `json:"uid" validate:"required"`
		Key string `json:"key" validate:"required"`
	}
	if err := c.BindBody(&in); err != nil {
		return nil, err
	}

	uid, err := uuid.Parse(in.UID)
	if err != nil {
		return nil, errConsumerInvalid()
	}
	consumer, err := d.Consumers.Consumer(c.RequestContext(), uid)
	if err != nil || !consumer.CheckKey(in.Key) {
		return nil, errConsumerInvalid()
	}

	issued, err := d.issue(c, consumer.UID.String(), AudienceConsumer)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"token":  issued.Token,
		"claims": issued.Claims,
	}, nil
}

// consumerEcho reports the authenticated consumer and the subject its
// requests act as.
func consumerEcho(c *jsonrest.Context) (any, error) {
	identity, ok := c.Identity().(*ConsumerIdentity)
	if !ok {
		return nil, errTokenInvalid()
	}
	return map[string]any{
		"consumer": identity.Principal(),
		"user":     identity.Consumer().Subject,
	}, nil
}

// userLogin exchanges a user's credentials for user tokens on behalf of
// an authenticated consumer. A weak token is issued unless the body turns
// it off; a strong token is added when the settings say so.
func (d Deps) userLogin(c *jsonrest.Context) (any, error) {
	var in struct {
		Username  string `json:"username" validate:"required"`
		Password  string `json:"password" validate:"required"`
		IssueWeak *bool  `json:"issue_weak"`
	}
	if err := c.BindBody(&in); err != nil {
		return nil, err
	}

	user, err := d.Users.VerifyCredential(c.RequestContext(), in.Username, in.Password)
	if err != nil {
		return nil, apierror.NewAuthentication("Invalid credentials", "")
	}

	data := map[string]any{}

	if in.IssueWeak == nil || *in.IssueWeak {
		weak, err := d.issue(c, user.Principal(), AudienceUserWeak)
		if err != nil {
			return nil, err
		}
		data["weak"] = weak
	}

	if d.Signer.Settings().IssueStrongWithLogin {
		strong, err := d.issue(c, user.Principal(), AudienceUserStrong)
		if err != nil {
			return nil, err
		}
		data["strong"] = strong
	}

	return data, nil
}

// userEcho reports the authenticated user.
func userEcho(c *jsonrest.Context) (any, error) {
	return map[string]any{"user": c.Identity().Principal()}, nil
}
