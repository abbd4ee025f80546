package lambdautils

import (
	"context"

	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/sirupsen/logrus"
)

// LambdaMetaData stored details about the current lambda context.
type LambdaMetaData struct {
	FunctionName    string
	FunctionVersion string
	LogGroupName    string
	LogStreamName   string
	MemoryLimitInMB int
	Context         *lambdacontext.LambdaContext
}

// GetLambdaMetaData returns MetaData extracted from the current lambda context.
func GetLambdaMetaData(ctx context.Context) LambdaMetaData {
	lm := LambdaMetaData{
		FunctionName:    lambdacontext.FunctionName,
		FunctionVersion: lambdacontext.FunctionVersion,
		LogGroupName:    lambdacontext.LogGroupName,
		LogStreamName:   lambdacontext.LogStreamName,
		MemoryLimitInMB: lambdacontext.MemoryLimitInMB,
	}

	lm.Context, _ = lambdacontext.FromContext(ctx)
	return lm
}

// RequestID returns the aws request id of the invocation, or "" outside of a
// lambda invocation.
func (lm LambdaMetaData) RequestID() string {
	if lm.Context == nil {
		return ""
	}
	return lm.Context.AwsRequestID
}

// Fields returns the metadata as structured log fields. Empty values are left
// out so local runs don't log blank function names.
func (lm LambdaMetaData) Fields() logrus.Fields {
	fields := logrus.Fields{}

	if lm.FunctionName != "" {
		fields["function"] = lm.FunctionName
	}
	if lm.FunctionVersion != "" {
		fields["version"] = lm.FunctionVersion
	}
	if id := lm.RequestID(); id != "" {
		fields["aws_request_id"] = id
	}

	return fields
}

// Logger returns an entry of logger carrying the metadata of ctx.
func Logger(ctx context.Context, logger logrus.FieldLogger) *logrus.Entry {
	return logger.WithFields(GetLambdaMetaData(ctx).Fields())
}
