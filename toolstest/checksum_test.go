package toolstest

import (
	"testing"

	"github.com/ARM-software/tracetooltests-sub000/tracehelpers"
	"github.com/ARM-software/tracetooltests-sub000/tracehelpers/mocks"
	"github.com/cockroachdb/errors"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
)

var assertBufferTestCases = map[string]struct {
	Checksum uint32
	Err      error

	ExpectErr bool
}{
	"Matching Checksum":  {Checksum: 0x1234, ExpectErr: false},
	"Wrong Checksum":     {Checksum: 0x4321, ExpectErr: true},
	"No Tool Listening":  {Checksum: 0, ExpectErr: false},
	"Helper Unavailable": {Err: tracehelpers.ErrUnavailable, ExpectErr: false},
	"Helper Failure":     {Err: errors.New("bad range"), ExpectErr: true},
}

func TestAssertBufferChecksum(t *testing.T) {
	for testName, testCase := range assertBufferTestCases {
		t.Run(testName, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			helpers := mocks.NewMockHelpers(ctrl)
			helpers.EXPECT().AssertBuffer(gomock.Any(), 0, WholeSize, "buffer").Return(testCase.Checksum, testCase.Err)

			ctx := &Context{Helpers: helpers}
			err := ctx.AssertBufferChecksum(nil, 0, WholeSize, "buffer", 0x1234)
			if testCase.ExpectErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestAssertBufferWithoutHelpers(t *testing.T) {
	ctx := &Context{}
	checksum, err := ctx.AssertBuffer(nil, 0, 64, "buffer")
	require.NoError(t, err)
	require.Equal(t, uint32(0), checksum)
}
