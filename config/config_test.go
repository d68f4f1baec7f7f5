package config

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, ProviderSupabase, cfg.DBProvider)
	assert.Equal(t, 8080, cfg.Port)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Origins())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("APP_ENV", "production")
	t.Setenv("DB_PROVIDER", ProviderLocalStorage)
	t.Setenv("ADMIN_ALLOWLIST_EMAILS", " Admin@ChiaView.org, ,ops@chiaview.org")

	cfg, err := Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, ProviderLocalStorage, cfg.DBProvider)
	assert.Equal(t, []string{"admin@chiaview.org", "ops@chiaview.org"}, cfg.AdminAllowlist())
}

func TestLoadProviderFromPublicVariable(t *testing.T) {
	t.Setenv("NEXT_PUBLIC_DB_PROVIDER", ProviderFirebase)

	cfg, err := Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ProviderFirebase, cfg.DBProvider)

	t.Setenv("DB_PROVIDER", ProviderLocalStorage)
	cfg, err = Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ProviderLocalStorage, cfg.DBProvider, "DB_PROVIDER takes precedence")
}

func TestLoadRejectsUnknownProvider(t *testing.T) {
	t.Setenv("DB_PROVIDER", "mongo")

	_, err := Load(context.Background())
	assert.ErrorContains(t, err, "unsupported DB_PROVIDER")
}

func TestDSN(t *testing.T) {
	cfg := &Config{DBUser: "u", DBPassword: "p", DBName: "postgres", DBPort: 5432, DBHost: "db.local", DBReplicaHosts: "r1.local, r2.local"}

	assert.Equal(t, "host=db.local user=u password=p dbname=postgres port=5432 sslmode=require", cfg.DSN())
	assert.Len(t, cfg.ReplicaDSNs(), 2)
	assert.Contains(t, cfg.ReplicaDSNs()[1], "host=r2.local")

	cfg.DatabaseURL = "postgres://override"
	assert.Equal(t, "postgres://override", cfg.DSN())
}

type fakeSSM struct {
	pages []*ssm.GetParametersByPathOutput
	calls int
}

func (f *fakeSSM) GetParametersByPath(_ context.Context, _ *ssm.GetParametersByPathInput, _ ...func(*ssm.Options)) (*ssm.GetParametersByPathOutput, error) {
	page := f.pages[f.calls]
	f.calls++
	return page, nil
}

func TestOverlaySSM(t *testing.T) {
	client := &fakeSSM{pages: []*ssm.GetParametersByPathOutput{
		{
			Parameters: []types.Parameter{
				{Name: aws.String("/chiaview/prod/STRIPE_SECRET_KEY"), Value: aws.String("sk_test_123")},
				{Name: aws.String("/chiaview/prod/UNRELATED"), Value: aws.String("ignored")},
			},
			NextToken: aws.String("next"),
		},
		{
			Parameters: []types.Parameter{
				{Name: aws.String("/chiaview/prod/PORT"), Value: aws.String("7070")},
			},
		},
	}}

	v := newViper()
	require.NoError(t, overlaySSM(context.Background(), v, client, "/chiaview/prod"))

	cfg, err := unmarshal(v)
	require.NoError(t, err)
	assert.Equal(t, "sk_test_123", cfg.StripeSecretKey)
	assert.Equal(t, 7070, cfg.Port)
	assert.Equal(t, 2, client.calls)
	assert.False(t, v.IsSet("UNRELATED"))
}
