package model_test

import (
	"errors"
	"testing"

	model "github.com/caffinecoder/skillnav/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestDecodeRepository(t *testing.T) {
	convey.Convey("Given repository JSON in each accepted shape", t, func() {
		convey.Convey("When it is a name", func() {
			r, ok, err := model.DecodeRepository([]byte(` "site" `))
			convey.So(err, convey.ShouldBeNil)
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(r, convey.ShouldResemble, model.Repository{Name: "site"})
		})

		convey.Convey("When it uses the short field names", func() {
			r, ok, err := model.DecodeRepository([]byte(`{"name":"x","language":"Go","stars":2,"forks":1,"description":"d"}`))
			convey.So(err, convey.ShouldBeNil)
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(r, convey.ShouldResemble, model.Repository{Name: "x", Language: "Go", Stars: 2, Forks: 1, Description: "d"})
		})

		convey.Convey("When it uses GitHub's field names", func() {
			r, _, err := model.DecodeRepository([]byte(`{"name":"y","language":null,"stargazers_count":5,"forks_count":4}`))
			convey.So(err, convey.ShouldBeNil)
			convey.So(r, convey.ShouldResemble, model.Repository{Name: "y", Stars: 5, Forks: 4})
		})

		convey.Convey("When both spellings are present", func() {
			r, _, err := model.DecodeRepository([]byte(`{"name":"z","stars":1,"stargazers_count":9,"forks_count":3}`))
			convey.So(err, convey.ShouldBeNil)
			convey.So(r.Stars, convey.ShouldEqual, 1)
			convey.So(r.Forks, convey.ShouldEqual, 3)
		})

		convey.Convey("When it is null", func() {
			_, ok, err := model.DecodeRepository([]byte(`null`))
			convey.So(err, convey.ShouldBeNil)
			convey.So(ok, convey.ShouldBeFalse)
		})

		convey.Convey("When it is any other value", func() {
			for _, raw := range []string{`42`, `true`, `[1]`, `{"stars":"many"}`} {
				_, _, err := model.DecodeRepository([]byte(raw))
				convey.So(errors.Is(err, model.ErrInvalidRepository), convey.ShouldBeTrue)
			}
		})
	})
}
