package hive_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hivescope/witnessboard/hive"
)

func TestParsePageFromUint64(t *testing.T) {
	t.Parallel()

	t.Run("when page is zero", func(t *testing.T) {
		t.Parallel()

		// Act
		page := hive.ParsePageFromUint64(0)

		// Assert
		assert.Equal(t, hive.Page(hive.DefaultPage), page, "Zero should default to first page")
	})

	t.Run("when page is positive", func(t *testing.T) {
		t.Parallel()

		testCases := []struct {
			name         string
			input        uint64
			expectedPage hive.Page
		}{
			{name: "first page", input: 1, expectedPage: hive.Page(1)},
			{name: "second page", input: 2, expectedPage: hive.Page(2)},
			{name: "high page number", input: 999, expectedPage: hive.Page(999)},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				t.Parallel()

				// Act
				page := hive.ParsePageFromUint64(tc.input)

				// Assert
				assert.Equal(t, tc.expectedPage, page)
				assert.Equal(t, tc.input, page.Uint64())
			})
		}
	})
}

func TestParsePerPageFromUint64(t *testing.T) {
	t.Parallel()

	t.Run("when per_page is zero", func(t *testing.T) {
		t.Parallel()

		// Act
		perPage, err := hive.ParsePerPageFromUint64(0)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, hive.PerPage(hive.DefaultPerPage), perPage, "Zero should default to %d", hive.DefaultPerPage)
	})

	t.Run("when per_page is within valid range", func(t *testing.T) {
		t.Parallel()

		testCases := []struct {
			name  string
			input uint64
		}{
			{name: "minimum valid per_page", input: 1},
			{name: "default per_page", input: hive.DefaultPerPage},
			{name: "maximum valid per_page", input: hive.MaxPerPage},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				t.Parallel()

				// Act
				perPage, err := hive.ParsePerPageFromUint64(tc.input)

				// Assert
				require.NoError(t, err)
				assert.Equal(t, hive.PerPage(tc.input), perPage)
				assert.Equal(t, tc.input, perPage.Uint64())
			})
		}
	})

	t.Run("when per_page exceeds maximum", func(t *testing.T) {
		t.Parallel()

		testCases := []struct {
			name  string
			input uint64
		}{
			{name: "one above maximum", input: hive.MaxPerPage + 1},
			{name: "large value", input: 500},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				t.Parallel()

				// Act
				perPage, err := hive.ParsePerPageFromUint64(tc.input)

				// Assert
				assert.ErrorIs(t, err, hive.ErrPerPageTooLarge)
				assert.Equal(t, hive.PerPage(0), perPage, "Should return zero value on error")
			})
		}
	})
}

func TestPage_Offset(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name           string
		page           hive.Page
		size           hive.PerPage
		expectedOffset int
	}{
		{name: "first page has no offset", page: 1, size: 50, expectedOffset: 0},
		{name: "second page skips one page", page: 2, size: 50, expectedOffset: 50},
		{name: "third page of ten", page: 3, size: 10, expectedOffset: 20},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// Act
			offset := tc.page.Offset(tc.size)

			// Assert
			assert.Equal(t, tc.expectedOffset, offset)
		})
	}
}

func TestWitnessesPage_HasNext(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name        string
		hasMore     bool
		expectedVal bool
	}{
		{name: "has more pages", hasMore: true, expectedVal: true},
		{name: "no more pages", hasMore: false, expectedVal: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// Arrange
			page := &hive.WitnessesPage{HasMore: tc.hasMore}

			// Act & Assert
			assert.Equal(t, tc.expectedVal, page.HasNext())
		})
	}
}

func TestWitnessesPage_HasPrevious(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name        string
		pageNumber  hive.Page
		expectedVal bool
	}{
		{name: "first page", pageNumber: 1, expectedVal: false},
		{name: "second page", pageNumber: 2, expectedVal: true},
		{name: "high page number", pageNumber: 10, expectedVal: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// Arrange
			page := &hive.WitnessesPage{Number: tc.pageNumber}

			// Act & Assert
			assert.Equal(t, tc.expectedVal, page.HasPrevious())
		})
	}
}
