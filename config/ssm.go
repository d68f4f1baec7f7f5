package config

import (
	"context"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

func newSSMClient(ctx context.Context) (*ssm.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "loading AWS configuration")
	}
	return ssm.NewFromConfig(awsCfg), nil
}

// overlaySSM copies every parameter under prefix into v. The last path segment of a
// parameter name is the setting key, e.g. /chiaview/prod/STRIPE_SECRET_KEY.
func overlaySSM(ctx context.Context, v *viper.Viper, client ssm.GetParametersByPathAPIClient, prefix string) error {
	paginator := ssm.NewGetParametersByPathPaginator(client, &ssm.GetParametersByPathInput{
		Path:           aws.String(prefix),
		Recursive:      aws.Bool(true),
		WithDecryption: aws.Bool(true),
	})

	count := 0
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return errors.Wrapf(err, "reading SSM parameters under %s", prefix)
		}
		for _, p := range page.Parameters {
			key := path.Base(aws.ToString(p.Name))
			if _, known := defaults[key]; !known {
				continue
			}
			v.Set(key, aws.ToString(p.Value))
			count++
		}
	}

	log.Info().Str("prefix", prefix).Int("parameters", count).Msg("applied SSM configuration overlay")
	return nil
}
