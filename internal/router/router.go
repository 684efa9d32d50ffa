package router

import (
	"GameShelf/internal/handler"
	"GameShelf/internal/middleware"
	"GameShelf/internal/pkg"
	"GameShelf/internal/service"

	"github.com/gin-gonic/gin"
)

func InitRouter(emailCfg pkg.SMTPConfig) *gin.Engine {
	r := gin.Default()

	rewardSvc := service.NewRewardService(service.DefaultRewardPolicy())
	memberSvc := service.NewMembershipService()
	roundSvc := service.NewRoundService(memberSvc, rewardSvc)
	dailySvc := service.NewDailyService(rewardSvc)
	emailSvc := service.NewEmailService(emailCfg)
	userSvc := service.NewUserService(emailSvc, rewardSvc)

	user := handler.NewUserHandler(userSvc)
	email := handler.NewEmailHandler(emailSvc)
	club := handler.NewClubHandler(memberSvc)
	round := handler.NewRoundHandler(roundSvc)
	daily := handler.NewDailyHandler(dailySvc)
	reward := handler.NewRewardHandler(rewardSvc)

	// 邮件验证码
	emailGroup := r.Group("/api/email")
	{
		emailGroup.POST("/:scope/code", email.SendCode)
	}

	// 注册登录
	userGroup := r.Group("/api/user")
	{
		userGroup.POST("/register", user.Register)
		userGroup.POST("/login", user.Login)
	}

	tokenGroup := r.Group("/api/token")
	{
		tokenGroup.POST("/refresh", user.TokenRefresh)
	}

	authGroup := r.Group("/api")
	authGroup.Use(middleware.AuthMiddleware())
	{
		authGroup.POST("/user/logout", user.Logout)

		// 俱乐部与成员
		authGroup.POST("/club/create", club.Create)
		authGroup.POST("/club/:id/join", club.Join)
		authGroup.POST("/club/:id/leave", club.Leave)
		authGroup.POST("/club/:id/invite", club.Invite)
		authGroup.POST("/club/:id/remove", club.Remove)
		authGroup.POST("/club/:id/transfer", club.Transfer)
		authGroup.GET("/club/:id/members", club.Members)

		// 轮次
		authGroup.POST("/club/:id/round", round.Create)
		authGroup.GET("/round/:id", round.View)
		authGroup.POST("/round/:id/nominate", round.Nominate)
		authGroup.POST("/round/:id/vote", round.Vote)
		authGroup.POST("/round/:id/review", round.Review)
		authGroup.POST("/round/:id/advance", round.Advance)

		// 每日投票 / 问答
		authGroup.POST("/daily/poll", daily.TodayPoll)
		authGroup.POST("/daily/poll/:id/vote", daily.CastPollVote)
		authGroup.GET("/daily/poll/:id/results", daily.PollResults)
		authGroup.POST("/daily/quiz", daily.TodayQuiz)
		authGroup.POST("/daily/quiz/:id/answer", daily.AnswerQuiz)
		authGroup.GET("/daily/quiz/:id/results", daily.QuizResults)

		// 经验与等级
		authGroup.GET("/profile/level", reward.Profile)
	}

	return r
}
