package mytesting

import (
	"context"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/suite"
)

type Suite struct {
	suite.Suite
	context.Context

	Cancel context.CancelFunc
}

func (s *Suite) SetupTest() {
	// .env is optional in tests; load it when the repo has one.
	if root, err := findProjectRoot(); err == nil {
		envPath := filepath.Join(root, ".env")
		if _, err := os.Stat(envPath); err == nil {
			s.Require().NoError(godotenv.Load(envPath))
		}
	}

	s.Context, s.Cancel = context.WithCancel(context.TODO())
}

func (s *Suite) TearDownTest() {
	s.Cancel()
}

func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
}
