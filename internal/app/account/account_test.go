package account_test

import (
	"errors"
	"testing"

	"github.com/okian/runboard/internal/app/account"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLogin(t *testing.T) {
	forms := account.New()

	Convey("Given a valid login", t, func() {
		res, err := forms.Login(account.LoginForm{Email: "runner@example.com", Password: "abcd"})

		Convey("Then the viewer goes to the catalog", func() {
			So(err, ShouldBeNil)
			So(res.Redirect, ShouldEqual, "/game")
		})
	})

	Convey("Given an invalid login", t, func() {
		_, err := forms.Login(account.LoginForm{Email: "nope", Password: "abc"})

		Convey("Then each field reports its problem", func() {
			So(errors.Is(err, account.ErrInvalidForm), ShouldBeTrue)
			var verr *account.ValidationError
			So(errors.As(err, &verr), ShouldBeTrue)
			So(verr.Fields["email"], ShouldEqual, "must be a valid email address")
			So(verr.Fields["password"], ShouldEqual, "must be at least 4 characters")
		})
	})

	Convey("Given an empty login", t, func() {
		_, err := forms.Login(account.LoginForm{})

		var verr *account.ValidationError
		So(errors.As(err, &verr), ShouldBeTrue)
		So(verr.Fields["email"], ShouldEqual, "is required")
		So(verr.Fields["password"], ShouldEqual, "is required")
	})
}

func TestRegister(t *testing.T) {
	forms := account.New()
	valid := account.RegisterForm{
		Username:       "runner",
		Email:          "runner@example.com",
		Password:       "secret1",
		RepeatPassword: "secret1",
	}

	Convey("Given a valid registration", t, func() {
		res, err := forms.Register(valid)

		Convey("Then the viewer goes to login", func() {
			So(err, ShouldBeNil)
			So(res.Redirect, ShouldEqual, "/login")
		})
	})

	Convey("Given mismatched passwords", t, func() {
		form := valid
		form.RepeatPassword = "secret2"
		_, err := forms.Register(form)

		var verr *account.ValidationError
		So(errors.As(err, &verr), ShouldBeTrue)
		So(verr.Fields["repeatPassword"], ShouldEqual, "must match password")
		So(len(verr.Fields), ShouldEqual, 1)
	})

	Convey("Given username and password length violations", t, func() {
		form := valid
		form.Username = "ab"
		form.Password = "12345"
		form.RepeatPassword = "12345"
		_, err := forms.Register(form)

		var verr *account.ValidationError
		So(errors.As(err, &verr), ShouldBeTrue)
		So(verr.Fields["username"], ShouldEqual, "must be at least 3 characters")
		So(verr.Fields["password"], ShouldEqual, "must be at least 6 characters")
		So(err.Error(), ShouldStartWith, "validation failed: password")
	})

	Convey("Given an overlong username", t, func() {
		form := valid
		form.Username = "abcdefghijklmnopqrstu"
		_, err := forms.Register(form)

		var verr *account.ValidationError
		So(errors.As(err, &verr), ShouldBeTrue)
		So(verr.Fields["username"], ShouldEqual, "must not exceed 20 characters")
	})
}
