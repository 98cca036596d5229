package evaluation

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/Knetic/govaluate"
	contracts "github.com/estafette/estafette-ci-contracts"
	"github.com/rs/zerolog/log"
)

// Service evaluates the when expression guarding the build notification
//
//go:generate mockgen -package=evaluation -destination ./mock.go -source=service.go
type Service interface {
	Evaluate(string, string, map[string]interface{}) (bool, error)
	GetParameters(status contracts.LogStatus, version string) map[string]interface{}
}

// NewService returns a new evaluation.Service
func NewService() (Service, error) {
	return &service{}, nil
}

type service struct {
}

func (s *service) Evaluate(name, input string, parameters map[string]interface{}) (result bool, err error) {

	if input == "" {
		return false, errors.New("when expression is empty")
	}

	// environment variables may be referenced as ${NAME}
	expanded := os.Expand(input, os.Getenv)

	log.Debug().Msgf("[%v] Evaluating %q with parameters %v", name, expanded, parameters)

	expression, err := govaluate.NewEvaluableExpression(expanded)
	if err != nil {
		return false, fmt.Errorf("parsing when expression %q failed: %w", expanded, err)
	}

	value, err := expression.Evaluate(parameters)
	if err != nil {
		return false, fmt.Errorf("evaluating when expression %q failed: %w", expanded, err)
	}

	result, ok := value.(bool)
	if !ok {
		return false, fmt.Errorf("when expression %q yields %v of type %T instead of a boolean", expanded, value, value)
	}

	log.Info().Msgf("[%v] When expression %q is %v", name, expanded, result)

	return result, nil
}

func (s *service) GetParameters(status contracts.LogStatus, version string) map[string]interface{} {

	parameters := make(map[string]interface{}, 2)
	parameters["status"] = strings.ToLower(string(status))
	parameters["version"] = version

	return parameters
}
