package config

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

const (
	paramTasksTable    = "/goaltracker/storage/tasks_table"
	paramReportsTable  = "/goaltracker/storage/reports_table"
	paramCountersTable = "/goaltracker/storage/counters_table"
	paramGraphWidth    = "/goaltracker/graph/width"
	paramGraphHeight   = "/goaltracker/graph/height"
	paramBackupBucket  = "/goaltracker/backup/bucket"
)

// ParameterAPI is the part of the SSM client the loader uses
type ParameterAPI interface {
	GetParameters(ctx context.Context, params *ssm.GetParametersInput, optFns ...func(*ssm.Options)) (*ssm.GetParametersOutput, error)
}

// SSMConfigLoader handles loading configuration from SSM Parameter Store
type SSMConfigLoader struct {
	client ParameterAPI
}

// NewSSMConfigLoader creates a new SSM configuration loader
func NewSSMConfigLoader(ctx context.Context) (*SSMConfigLoader, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}

	return NewSSMConfigLoaderWithClient(ssm.NewFromConfig(cfg)), nil
}

func NewSSMConfigLoaderWithClient(client ParameterAPI) *SSMConfigLoader {
	return &SSMConfigLoader{client: client}
}

// LoadConfig loads configuration from SSM Parameter Store. Missing
// parameters fall back to the defaults.
func (s *SSMConfigLoader) LoadConfig(ctx context.Context) (*Config, error) {
	parameterNames := []string{
		paramTasksTable,
		paramReportsTable,
		paramCountersTable,
		paramGraphWidth,
		paramGraphHeight,
		paramBackupBucket,
	}

	result, err := s.client.GetParameters(ctx, &ssm.GetParametersInput{
		Names:          parameterNames,
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}

	params := make(map[string]string)
	for _, param := range result.Parameters {
		if param.Name != nil && param.Value != nil {
			params[*param.Name] = *param.Value
		}
	}

	// Only the table names are required; graph and backup settings are optional
	if len(result.InvalidParameters) > 0 {
		var missing []string
		for _, name := range result.InvalidParameters {
			if name == paramTasksTable || name == paramReportsTable {
				missing = append(missing, name)
			}
		}
		if len(missing) > 0 {
			return nil, &ConfigError{
				Message: "Missing required parameters",
				Details: missing,
			}
		}
	}

	config := &Config{
		Storage: StorageConfig{
			TasksTable:    params[paramTasksTable],
			ReportsTable:  params[paramReportsTable],
			CountersTable: params[paramCountersTable],
		},
		Graph: GraphConfig{
			Width:  parseIntWithDefault(params[paramGraphWidth], 0),
			Height: parseIntWithDefault(params[paramGraphHeight], 0),
		},
		Backup: BackupConfig{
			Bucket:   params[paramBackupBucket],
			Compress: true,
		},
	}
	config.applyDefaults()

	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}
