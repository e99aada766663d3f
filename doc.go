// Package envssm resolves application configuration from AWS Systems Manager
// Parameter Store, local .env and .tfvars files and the process environment,
// and reads values back through a type-coercing accessor.
//
// # Sources
//
// Load merges its sources in a fixed order, each overriding the previous one:
//
//  1. Parameter Store, for every configured path
//  2. the .env file (".env" in the working directory by default)
//  3. the .tfvars file (disabled by default)
//  4. the process environment
//
// Parameters under a path become nested keys relative to that path, so
// /app/stg/db/password read from the path /app/stg is available as
// "db.password". Paths may carry their own delimiter for stores that name
// parameters like app.stg.db.password.
//
// Store errors never fail a Load: a path that cannot be listed is skipped and
// logged. A missing .env or .tfvars file is treated as empty.
//
// # Environment overrides
//
// Options left at their zero value can be supplied by the environment:
//
//	ENV_SSM_PATHS            /app/stg,/shared or a JSON array of paths
//	ENV_SSM_PATH_DELIMITER   default delimiter for paths
//	ENV_SSM_PROCESS_ENV      "false" drops the process environment
//	ENV_SSM_DOTENV           .env file path, "false" to disable
//	ENV_SSM_TFVAR            .tfvars file path
//
// Setting DEBUG=env-ssm logs every resolution step to stderr.
//
// # Reading values
//
// Container.Get returns a Coercion that converts the raw value on demand:
//
//	cfg, err := envssm.Load(ctx, envssm.Options{
//		Store: ssmstore.New(ssm.NewFromConfig(awsCfg)),
//		Paths: envssm.Paths("/app/stg"),
//	})
//	if err != nil {
//		return err
//	}
//
//	port, err := cfg.Get("PORT").Default("8080").AsPortNumber()
//	password, err := cfg.Get("db.password").Required().AsString()
//	timeout, err := cfg.Get("TIMEOUT").Default("30s").AsDuration()
//
// Lookups try the exact key first and fall back to a case-insensitive match,
// so "PASSWORD" finds a parameter named password.
//
// # Struct binding
//
// Bind fills a tagged struct from a Container:
//
//	type Config struct {
//		Port     int           `env:"PORT" default:"8080"`
//		Timeout  time.Duration `env:"TIMEOUT" default:"30s"`
//		Password string        `secret:"db.password" required:"true"`
//		Admins   []mail.Address `env:"ADMINS"`
//	}
//
//	c, err := envssm.Bind(cfg, Config{})
//	fmt.Println(envssm.PrettyString(c)) // secrets masked
//
// Supported field types:
//   - string, bool, every int, uint and float size
//   - slices of any supported type, from comma separated values
//   - time.Duration, time.Time, slog.Level
//   - url.URL, net.IP, mail.Address
//   - big.Int, decimal.Decimal, resource.Quantity, uuid.UUID
//   - rsa.PrivateKey and ecdsa.PrivateKey from PEM
//   - expr programs (*vm.Program)
//   - any encoding.TextUnmarshaler, and types added with RegisterParser
//   - nested structs, by value or pointer
package envssm
