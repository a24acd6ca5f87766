package adminAuth_test

import (
	"context"
	"errors"
	"fmt"

	adminAuth "github.com/MrEthical07/adminAuth"
	"github.com/redis/go-redis/v9"
)

// ExampleNew wires an engine from its stores. Production deployments use the
// dynamo and mail packages for the stores and mailer.
func ExampleNew() {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:6379"})
	defer func() { _ = rdb.Close() }()

	var (
		users  adminAuth.CredentialStore
		codes  adminAuth.VerificationCodeStore
		mailer adminAuth.Mailer
	)

	engine, err := adminAuth.New().
		WithRedis(rdb).
		WithCredentialStore(users).
		WithVerificationCodeStore(codes).
		WithMailer(mailer).
		Build()
	if err != nil {
		fmt.Println(err)
		return
	}
	defer engine.Close()
	// Output: credential store required
}

// ExampleCodeOf shows how a boundary turns engine errors into responses.
func ExampleCodeOf() {
	err := fmt.Errorf("login: %w", adminAuth.ErrAccountUnclaimed)
	code, _ := adminAuth.CodeOf(err)
	fmt.Println(code, code.HTTPStatus())

	code, known := adminAuth.CodeOf(errors.New("dynamodb timeout"))
	fmt.Println(code, known)
	// Output:
	// ACCOUNT_UNCLAIMED 400
	// INTERNAL_SERVER_ERROR false
}

// ExampleEngine_Authorize shows the bearer check used by protected routes.
func ExampleEngine_Authorize() {
	var engine *adminAuth.Engine
	decision, err := engine.Authorize(context.Background(), "Bearer 3f9a")
	fmt.Println(decision.Allow, errors.Is(err, adminAuth.ErrEngineNotReady))
	// Output: false true
}
