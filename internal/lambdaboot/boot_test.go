package lambdaboot

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
)

type fakeSSM struct {
	value string
	err   error
	calls int
	input *ssm.GetParameterInput
}

func (f *fakeSSM) GetParameter(_ context.Context, in *ssm.GetParameterInput, _ ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	f.calls++
	f.input = in
	if f.err != nil {
		return nil, f.err
	}
	return &ssm.GetParameterOutput{Parameter: &types.Parameter{Value: aws.String(f.value)}}, nil
}

func TestLoadSecret(t *testing.T) {
	f := &fakeSSM{value: "secret"}
	got, err := LoadSecret(context.Background(), f, "/menu-lens/prod/gemini-api-key")
	if err != nil || got != "secret" {
		t.Fatalf("LoadSecret() = %q, %v", got, err)
	}
	if !aws.ToBool(f.input.WithDecryption) || aws.ToString(f.input.Name) != "/menu-lens/prod/gemini-api-key" {
		t.Errorf("input = %+v", f.input)
	}
}

func TestLoadSecretErrors(t *testing.T) {
	if _, err := LoadSecret(context.Background(), &fakeSSM{err: errors.New("AccessDenied")}, "/p"); err == nil {
		t.Error("expected error from SSM failure")
	}
	if _, err := LoadSecret(context.Background(), &fakeSSM{value: ""}, "/p"); err == nil {
		t.Error("expected error for empty parameter")
	}
}

func TestResolveGeminiKeySkipsSSMWhenSet(t *testing.T) {
	f := &fakeSSM{value: "from-ssm"}
	got, err := ResolveGeminiKey(context.Background(), "from-env", f, "/p")
	if err != nil || got != "from-env" || f.calls != 0 {
		t.Errorf("ResolveGeminiKey() = %q, %v (calls %d)", got, err, f.calls)
	}
	got, err = ResolveGeminiKey(context.Background(), "", f, "/p")
	if err != nil || got != "from-ssm" || f.calls != 1 {
		t.Errorf("ResolveGeminiKey() = %q, %v (calls %d)", got, err, f.calls)
	}
}
