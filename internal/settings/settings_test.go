package settings_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/closer/internal/settings"
	"github.com/MrJamesThe3rd/closer/internal/storage"
	"github.com/MrJamesThe3rd/closer/internal/validation"
)

func TestService_Get(t *testing.T) {
	type testCase struct {
		name      string
		setupMock func(m *storage.MockProvider)
		want      settings.Settings
		wantErr   bool
	}

	custom := settings.Defaults()
	custom.AnnualGCIGoal = 12_000_000
	custom.TargetCloseRate = 25

	tests := []testCase{
		{
			name: "NothingStored",
			setupMock: func(m *storage.MockProvider) {
				m.EXPECT().Load(gomock.Any(), storage.Settings).Return(nil, nil)
			},
			want: settings.Defaults(),
		},
		{
			name: "PartialRecordKeepsDefaults",
			setupMock: func(m *storage.MockProvider) {
				m.EXPECT().Load(gomock.Any(), storage.Settings).
					Return([]byte(`{"annual_gci_goal":12000000,"target_close_rate":25}`), nil)
			},
			want: custom,
		},
		{
			name: "Corrupt",
			setupMock: func(m *storage.MockProvider) {
				m.EXPECT().Load(gomock.Any(), storage.Settings).Return([]byte(`{`), nil)
			},
			wantErr: true,
		},
		{
			name: "StoreError",
			setupMock: func(m *storage.MockProvider) {
				m.EXPECT().Load(gomock.Any(), storage.Settings).Return(nil, errors.New("disk gone"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			store := storage.NewMockProvider(ctrl)
			tt.setupMock(store)

			got, err := settings.NewService(store).Get(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestService_Update(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := storage.NewMockProvider(ctrl)
	svc := settings.NewService(store)

	st := settings.Defaults()
	st.DefaultMPG = 30

	store.EXPECT().
		Save(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, batch map[storage.Collection][]byte) error {
			require.Len(t, batch, 1)
			assert.Contains(t, string(batch[storage.Settings]), `"default_mpg":30`)
			return nil
		})

	require.NoError(t, svc.Update(context.Background(), st))
}

func TestService_UpdateRejectsInvalid(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := settings.NewService(storage.NewMockProvider(ctrl))

	st := settings.Defaults()
	st.TargetCloseRate = 140

	err := svc.Update(context.Background(), st)
	assert.ErrorIs(t, err, validation.ErrInvalid)
}
