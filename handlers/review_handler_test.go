package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tutorlink/api/models"
)

func TestCreateReviewUpdatesTutorAggregate(t *testing.T) {
	db := setupDB(t)
	app := newApp(db, &fakeGateway{}, &fakeNotifier{})

	student := createUser(t, db, models.RoleStudent, nil)
	tutor := createUser(t, db, models.RoleTutor, ptrFloat(40))
	subject := createSubject(t, db)

	first := createBooking(t, db, student, tutor, subject, models.BookingStatusCompleted)
	resp, body := doRequest(t, app, http.MethodPost, "/api/reviews", tokenFor(t, student), map[string]interface{}{
		"booking": first.ID.String(),
		"rating":  4,
		"comment": "Solid explanations",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, tutor.ID.String(), body["data"].(map[string]interface{})["tutor_id"],
		"tutor is taken from the booking, not the payload")

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, "id = ?", tutor.ID).Error)
	assert.Equal(t, 4.0, reloaded.AverageRating)
	assert.Equal(t, 1, reloaded.TotalReviews)

	second := createBooking(t, db, student, tutor, subject, models.BookingStatusCompleted)
	resp, _ = doRequest(t, app, http.MethodPost, "/api/reviews", tokenFor(t, student), map[string]interface{}{
		"booking": second.ID.String(),
		"rating":  5,
		"comment": "Even better this time",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	require.NoError(t, db.First(&reloaded, "id = ?", tutor.ID).Error)
	assert.Equal(t, 4.5, reloaded.AverageRating)
	assert.Equal(t, 2, reloaded.TotalReviews)
}

func TestCreateReviewAverageRoundsToOneDecimal(t *testing.T) {
	db := setupDB(t)
	app := newApp(db, &fakeGateway{}, &fakeNotifier{})

	student := createUser(t, db, models.RoleStudent, nil)
	tutor := createUser(t, db, models.RoleTutor, ptrFloat(40))
	subject := createSubject(t, db)

	for _, rating := range []int{4, 4, 5} {
		booking := createBooking(t, db, student, tutor, subject, models.BookingStatusCompleted)
		resp, _ := doRequest(t, app, http.MethodPost, "/api/reviews", tokenFor(t, student), map[string]interface{}{
			"booking": booking.ID.String(),
			"rating":  rating,
			"comment": "ok",
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, "id = ?", tutor.ID).Error)
	assert.Equal(t, 4.3, reloaded.AverageRating, "13/3 rounds to one decimal")
}

func TestCreateReviewGuards(t *testing.T) {
	db := setupDB(t)
	app := newApp(db, &fakeGateway{}, &fakeNotifier{})

	student := createUser(t, db, models.RoleStudent, nil)
	stranger := createUser(t, db, models.RoleStudent, nil)
	tutor := createUser(t, db, models.RoleTutor, ptrFloat(40))
	subject := createSubject(t, db)

	pending := createBooking(t, db, student, tutor, subject, models.BookingStatusPending)
	resp, body := doRequest(t, app, http.MethodPost, "/api/reviews", tokenFor(t, student), map[string]interface{}{
		"booking": pending.ID.String(),
		"rating":  5,
		"comment": "too early",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "You can only review completed bookings", body["message"])

	completed := createBooking(t, db, student, tutor, subject, models.BookingStatusCompleted)
	resp, _ = doRequest(t, app, http.MethodPost, "/api/reviews", tokenFor(t, stranger), map[string]interface{}{
		"booking": completed.ID.String(),
		"rating":  5,
		"comment": "not my booking",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = doRequest(t, app, http.MethodPost, "/api/reviews", tokenFor(t, tutor), map[string]interface{}{
		"booking": completed.ID.String(),
		"rating":  5,
		"comment": "tutors cannot review",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestCreateReviewRejectsDuplicate(t *testing.T) {
	db := setupDB(t)
	app := newApp(db, &fakeGateway{}, &fakeNotifier{})

	student := createUser(t, db, models.RoleStudent, nil)
	tutor := createUser(t, db, models.RoleTutor, ptrFloat(40))
	subject := createSubject(t, db)
	booking := createBooking(t, db, student, tutor, subject, models.BookingStatusCompleted)

	payload := map[string]interface{}{"booking": booking.ID.String(), "rating": 5, "comment": "great"}

	resp, _ := doRequest(t, app, http.MethodPost, "/api/reviews", tokenFor(t, student), payload)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := doRequest(t, app, http.MethodPost, "/api/reviews", tokenFor(t, student), payload)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "You have already reviewed this booking", body["message"])

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, "id = ?", tutor.ID).Error)
	assert.Equal(t, 1, reloaded.TotalReviews, "aggregate unchanged by the rejected attempt")
}

func TestUpdateReviewRecomputesOnRatingChange(t *testing.T) {
	db := setupDB(t)
	app := newApp(db, &fakeGateway{}, &fakeNotifier{})

	student := createUser(t, db, models.RoleStudent, nil)
	tutor := createUser(t, db, models.RoleTutor, ptrFloat(40))
	subject := createSubject(t, db)
	booking := createBooking(t, db, student, tutor, subject, models.BookingStatusCompleted)

	review := models.Review{BookingID: booking.ID, StudentID: student.ID, TutorID: tutor.ID, Rating: 4, Comment: "good"}
	require.NoError(t, db.Create(&review).Error)
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", tutor.ID).
		Updates(map[string]interface{}{"average_rating": 4.0, "total_reviews": 1}).Error)

	resp, _ := doRequest(t, app, http.MethodPut, "/api/reviews/"+review.ID.String(), tokenFor(t, student),
		map[string]interface{}{"rating": 2})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, "id = ?", tutor.ID).Error)
	assert.Equal(t, 2.0, reloaded.AverageRating)

	resp, body := doRequest(t, app, http.MethodPut, "/api/reviews/"+review.ID.String(), tokenFor(t, student),
		map[string]interface{}{"comment": "changed my mind on the wording"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "changed my mind on the wording", body["data"].(map[string]interface{})["comment"])

	require.NoError(t, db.First(&reloaded, "id = ?", tutor.ID).Error)
	assert.Equal(t, 2.0, reloaded.AverageRating, "comment-only edits keep the aggregate")
}

func TestUpdateReviewAccessControl(t *testing.T) {
	db := setupDB(t)
	app := newApp(db, &fakeGateway{}, &fakeNotifier{})

	student := createUser(t, db, models.RoleStudent, nil)
	stranger := createUser(t, db, models.RoleStudent, nil)
	tutor := createUser(t, db, models.RoleTutor, ptrFloat(40))
	subject := createSubject(t, db)
	booking := createBooking(t, db, student, tutor, subject, models.BookingStatusCompleted)

	review := models.Review{BookingID: booking.ID, StudentID: student.ID, TutorID: tutor.ID, Rating: 4, Comment: "good"}
	require.NoError(t, db.Create(&review).Error)

	resp, _ := doRequest(t, app, http.MethodPut, "/api/reviews/"+review.ID.String(), tokenFor(t, stranger),
		map[string]interface{}{"rating": 1})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = doRequest(t, app, http.MethodDelete, "/api/reviews/"+review.ID.String(), tokenFor(t, stranger), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestDeleteReviewResetsAggregate(t *testing.T) {
	db := setupDB(t)
	app := newApp(db, &fakeGateway{}, &fakeNotifier{})

	student := createUser(t, db, models.RoleStudent, nil)
	tutor := createUser(t, db, models.RoleTutor, ptrFloat(40))
	admin := createUser(t, db, models.RoleAdmin, nil)
	subject := createSubject(t, db)
	booking := createBooking(t, db, student, tutor, subject, models.BookingStatusCompleted)

	review := models.Review{BookingID: booking.ID, StudentID: student.ID, TutorID: tutor.ID, Rating: 5, Comment: "great"}
	require.NoError(t, db.Create(&review).Error)
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", tutor.ID).
		Updates(map[string]interface{}{"average_rating": 5.0, "total_reviews": 1}).Error)

	resp, _ := doRequest(t, app, http.MethodDelete, "/api/reviews/"+review.ID.String(), tokenFor(t, admin), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, "id = ?", tutor.ID).Error)
	assert.Equal(t, 0.0, reloaded.AverageRating, "aggregate resets when no reviews remain")
	assert.Equal(t, 0, reloaded.TotalReviews)
}

func TestGetReviewsFilteredByTutor(t *testing.T) {
	db := setupDB(t)
	app := newApp(db, &fakeGateway{}, &fakeNotifier{})

	student := createUser(t, db, models.RoleStudent, nil)
	tutorA := createUser(t, db, models.RoleTutor, ptrFloat(40))
	tutorB := createUser(t, db, models.RoleTutor, ptrFloat(40))
	subject := createSubject(t, db)

	bookingA := createBooking(t, db, student, tutorA, subject, models.BookingStatusCompleted)
	bookingB := createBooking(t, db, student, tutorB, subject, models.BookingStatusCompleted)
	require.NoError(t, db.Create(&models.Review{BookingID: bookingA.ID, StudentID: student.ID, TutorID: tutorA.ID, Rating: 5, Comment: "a"}).Error)
	require.NoError(t, db.Create(&models.Review{BookingID: bookingB.ID, StudentID: student.ID, TutorID: tutorB.ID, Rating: 3, Comment: "b"}).Error)

	_, body := doRequest(t, app, http.MethodGet, "/api/reviews", "", nil)
	assert.Equal(t, 2.0, body["count"])

	_, body = doRequest(t, app, http.MethodGet, "/api/reviews?tutor="+tutorA.ID.String(), "", nil)
	assert.Equal(t, 1.0, body["count"])
}
